package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Collector counts HTTP traffic and document renders.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu      sync.Mutex
	renders map[string]*renderStats
}

type renderStats struct {
	ok      uint64
	failed  uint64
	totalMs uint64
}

func New() *Collector {
	return &Collector{renders: make(map[string]*renderStats)}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// ObserveRender records one render of layout.
func (c *Collector) ObserveRender(layout string, elapsed time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.renders[layout]
	if !ok {
		stats = &renderStats{}
		c.renders[layout] = stats
	}
	if err != nil {
		stats.failed++
	} else {
		stats.ok++
	}
	stats.totalMs += uint64(elapsed.Milliseconds())
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	layouts := make([]string, 0, len(c.renders))
	for name := range c.renders {
		layouts = append(layouts, name)
	}
	sort.Strings(layouts)
	var rendered, failed uint64
	perLayout := make(map[string]any, len(layouts))
	for _, name := range layouts {
		stats := c.renders[name]
		rendered += stats.ok
		failed += stats.failed
		perLayout[name] = map[string]any{
			"rendered":        stats.ok,
			"failed":          stats.failed,
			"totalDurationMs": stats.totalMs,
		}
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"rendersTotal":     rendered,
		"renderFailures":   failed,
		"renders":          perLayout,
	}
}
