package refno

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var ErrPortalNotConfigured = errors.New("reference portal url is not configured")

// Fetcher looks up the EPF reference number a portal issued for a remittance.
type Fetcher interface {
	Fetch(ctx context.Context, employerNo, period string) (string, error)
}

type BrowserConfig struct {
	PortalURL string
	// ControlURL points at a running browser; empty launches a headless one per call.
	ControlURL       string
	Timeout          time.Duration
	EmployerSelector string
	PeriodSelector   string
	SubmitSelector   string
	ResultSelector   string
}

func (c BrowserConfig) withDefaults() BrowserConfig {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.EmployerSelector == "" {
		c.EmployerSelector = "#employerNo"
	}
	if c.PeriodSelector == "" {
		c.PeriodSelector = "#contributionPeriod"
	}
	if c.SubmitSelector == "" {
		c.SubmitSelector = "button[type=submit]"
	}
	if c.ResultSelector == "" {
		c.ResultSelector = "#referenceNo"
	}
	return c
}

// BrowserFetcher drives the portal with go-rod. Every call acquires its own
// browser connection and releases it before returning.
type BrowserFetcher struct {
	cfg BrowserConfig
}

func NewBrowserFetcher(cfg BrowserConfig) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg.withDefaults()}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, employerNo, period string) (string, error) {
	if f.cfg.PortalURL == "" {
		return "", ErrPortalNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	controlURL := f.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true).Context(ctx)
		url, err := l.Launch()
		if err != nil {
			return "", fmt.Errorf("launch browser: %w", err)
		}
		defer l.Cleanup()
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: f.cfg.PortalURL})
	if err != nil {
		return "", fmt.Errorf("open portal: %w", err)
	}
	defer page.Close()
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	if err := f.input(page, f.cfg.EmployerSelector, employerNo); err != nil {
		return "", err
	}
	if err := f.input(page, f.cfg.PeriodSelector, period); err != nil {
		return "", err
	}
	submit, err := page.Element(f.cfg.SubmitSelector)
	if err != nil {
		return "", fmt.Errorf("submit not found: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}

	result, err := page.Element(f.cfg.ResultSelector)
	if err != nil {
		return "", fmt.Errorf("result not found: %w", err)
	}
	text, err := result.Text()
	if err != nil {
		return "", fmt.Errorf("read result: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (f *BrowserFetcher) input(page *rod.Page, selector, value string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("element %s not found: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input %s: %w", selector, err)
	}
	return nil
}
