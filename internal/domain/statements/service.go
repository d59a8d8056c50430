package statements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"payrolldocs/internal/compose"
	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/domain/projection"
	"payrolldocs/internal/render"
)

const defaultConcurrency = 4

// RenderObserver is told about every render the service performs.
type RenderObserver interface {
	ObserveRender(layout string, elapsed time.Duration, err error)
}

type Options struct {
	// Concurrency bounds the renders in flight for one request.
	Concurrency int
	Logger      zerolog.Logger
	Observer    RenderObserver
}

// Document is a finished deliverable.
type Document struct {
	Name         string
	Data         []byte
	Degradations []projection.Degradation
}

type Service struct {
	store       company.Reader
	renderer    render.Renderer
	concurrency int
	log         zerolog.Logger
	observer    RenderObserver
}

func NewService(store company.Reader, renderer render.Renderer, opts Options) *Service {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Service{
		store:       store,
		renderer:    renderer,
		concurrency: concurrency,
		log:         opts.Logger.With().Str("component", "statements").Logger(),
		observer:    opts.Observer,
	}
}

// task is one render whose output lands at a fixed position.
type task struct {
	employerNo string
	period     string
	layout     string
	input      render.Input
}

// slot is one composition part before its sources are rendered.
type slot struct {
	tasks        []task
	mode         compose.Mode
	copies       int
	quarterTurns int
}

func (s *Service) loadCompany(ctx context.Context, employerNo, period string) (company.Company, error) {
	if !company.ValidPeriod(period) {
		return company.Company{}, wrap(fmt.Errorf("%w: %q", company.ErrInvalidPeriod, period), employerNo, period, "")
	}
	c, err := s.store.FindCompany(ctx, employerNo)
	if err != nil {
		return company.Company{}, wrap(err, employerNo, period, "")
	}
	return c, nil
}

// Statement renders one salary, EPF or ETF statement. The renderer output is
// returned unchanged.
func (s *Service) Statement(ctx context.Context, employerNo, period string, doc projection.DocType) (Document, error) {
	if doc == projection.DocPayslip || !doc.Valid() {
		return Document{}, wrap(fmt.Errorf("%w: %q", projection.ErrUnknownDocument, doc), employerNo, period, string(doc))
	}
	c, err := s.loadCompany(ctx, employerNo, period)
	if err != nil {
		return Document{}, err
	}
	p, err := projection.Project(c, period, doc)
	if err != nil {
		return Document{}, wrap(err, employerNo, period, string(doc))
	}
	s.noteDegradations(c.EmployerNo, period, p.Degradations)

	data, err := s.render(ctx, taskFor(c.EmployerNo, period, p))
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:         FileName(c.Name, period, statementLabel(doc), false),
		Data:         data,
		Degradations: p.Degradations,
	}, nil
}

func (s *Service) Payslip(ctx context.Context, employerNo, period string, epfNo int) (Document, error) {
	c, err := s.loadCompany(ctx, employerNo, period)
	if err != nil {
		return Document{}, err
	}
	p, err := projection.ProjectPayslip(c, period, epfNo)
	if err != nil {
		return Document{}, wrap(err, employerNo, period, string(projection.DocPayslip))
	}
	s.noteDegradations(c.EmployerNo, period, p.Degradations)

	data, err := s.render(ctx, taskFor(c.EmployerNo, period, p))
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:         FileName(c.Name, period, fmt.Sprintf("Payslip %d", epfNo), false),
		Data:         data,
		Degradations: p.Degradations,
	}, nil
}

// Payslips renders every employee's payslip in stored order, either one after
// another or four to a page.
func (s *Service) Payslips(ctx context.Context, employerNo, period string, tiled bool) (Document, error) {
	c, err := s.loadCompany(ctx, employerNo, period)
	if err != nil {
		return Document{}, err
	}
	part, notes, err := payslipSlot(c, period)
	if err != nil {
		return Document{}, err
	}
	if !tiled {
		part.mode = compose.Sequential
	}
	s.noteDegradations(c.EmployerNo, period, notes)

	data, err := s.assemble(ctx, []slot{part})
	if err != nil {
		return Document{}, wrap(err, c.EmployerNo, period, string(projection.DocPayslip))
	}
	return Document{
		Name:         FileName(c.Name, period, "Payslips", tiled),
		Data:         data,
		Degradations: notes,
	}, nil
}

// Bundle assembles the statements the company requires, in the fixed order
// salary sheet, EPF, ETF, payslips.
func (s *Service) Bundle(ctx context.Context, employerNo, period string, printable bool) (Document, error) {
	c, err := s.loadCompany(ctx, employerNo, period)
	if err != nil {
		return Document{}, err
	}
	slots, notes, err := bundleSlots(c, period, printable)
	if err != nil {
		return Document{}, err
	}
	s.noteDegradations(c.EmployerNo, period, notes)

	data, err := s.assemble(ctx, slots)
	if err != nil {
		return Document{}, wrap(err, c.EmployerNo, period, "bundle")
	}
	return Document{
		Name:         FileName(c.Name, period, "All Statements", printable),
		Data:         data,
		Degradations: notes,
	}, nil
}

// AllCompanies appends the bundle of every active company, in stored order,
// into one document. One failing company fails the whole batch.
func (s *Service) AllCompanies(ctx context.Context, period string, printable bool) (Document, error) {
	if !company.ValidPeriod(period) {
		return Document{}, wrap(fmt.Errorf("%w: %q", company.ErrInvalidPeriod, period), "", period, "")
	}
	companies, err := s.store.FindActiveCompanies(ctx)
	if err != nil {
		return Document{}, wrap(err, "", period, "")
	}
	if len(companies) == 0 {
		return Document{}, wrap(ErrNoActiveCompanies, "", period, "")
	}

	var slots []slot
	var notes []projection.Degradation
	for _, c := range companies {
		companySlots, companyNotes, err := bundleSlots(c, period, printable)
		if err != nil {
			return Document{}, err
		}
		s.noteDegradations(c.EmployerNo, period, companyNotes)
		slots = append(slots, companySlots...)
		notes = append(notes, companyNotes...)
	}

	data, err := s.assemble(ctx, slots)
	if err != nil {
		return Document{}, wrap(err, "", period, "all companies")
	}
	return Document{
		Name:         FileName("All Companies", period, "All Statements", printable),
		Data:         data,
		Degradations: notes,
	}, nil
}

func (s *Service) noteDegradations(employerNo, period string, notes []projection.Degradation) {
	for _, n := range notes {
		s.log.Warn().
			Str("employer_no", employerNo).
			Str("period", period).
			Int("epf_no", n.EPFNo).
			Str("field", n.Field).
			Msg(n.Reason)
	}
}

func (s *Service) render(ctx context.Context, t task) ([]byte, error) {
	start := time.Now()
	data, err := s.renderer.Render(ctx, t.layout, t.input)
	if s.observer != nil {
		s.observer.ObserveRender(t.layout, time.Since(start), err)
	}
	if err != nil {
		return nil, &Error{
			Kind:       KindExternalRenderFailure,
			EmployerNo: t.employerNo,
			Period:     t.period,
			Document:   t.layout,
			Err:        err,
		}
	}
	return data, nil
}

// assemble renders every task concurrently, then folds the outputs strictly
// by slot and task position.
func (s *Service) assemble(ctx context.Context, slots []slot) ([]byte, error) {
	results := make([][][]byte, len(slots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sl := range slots {
		results[i] = make([][]byte, len(sl.tasks))
		for j, t := range sl.tasks {
			g.Go(func() error {
				data, err := s.render(gctx, t)
				if err != nil {
					return err
				}
				results[i][j] = data
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parts := make([]compose.Part, 0, len(slots))
	for i, sl := range slots {
		parts = append(parts, compose.Part{
			Sources:      results[i],
			Mode:         sl.mode,
			Copies:       sl.copies,
			QuarterTurns: sl.quarterTurns,
		})
	}
	data, err := compose.Compose(parts...)
	if err != nil {
		return nil, composeFailure(err)
	}
	return data, nil
}

// composeFailure marks a failure to build the output document as a render
// failure. Having nothing to compose stays a missing input.
func composeFailure(err error) error {
	if errors.Is(err, compose.ErrEmpty) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCompose, err)
}
