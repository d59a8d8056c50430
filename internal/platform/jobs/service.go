package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"payrolldocs/internal/requestctx"
)

const (
	JobAllCompanies  = "all_companies_bundle"
	JobCompanyBundle = "company_bundle"
)

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	ErrQueueFull   = errors.New("job queue full")
	ErrRunNotFound = errors.New("job run not found")
)

type Run struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// RunStore persists the job run log.
type RunStore interface {
	CreateRun(ctx context.Context, run Run) error
	UpdateRun(ctx context.Context, id, status string, details []byte, done bool) error
	GetRun(ctx context.Context, id string) (Run, error)
}

type Service struct {
	runs  RunStore
	log   zerolog.Logger
	queue chan job
	wg    sync.WaitGroup
}

type job struct {
	ID        string
	Type      string
	RequestID string
	Run       func(ctx context.Context, runID string) (any, error)
}

func New(runs RunStore, log zerolog.Logger) *Service {
	return &Service{
		runs:  runs,
		log:   log.With().Str("component", "jobs").Logger(),
		queue: make(chan job, 128),
	}
}

// Start launches the worker; it stops when ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
}

// Wait blocks until the worker has stopped.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Enqueue records a queued run and hands it to the worker. The run id is
// passed to run so outputs can be stored under it, and the request id on ctx
// follows the job onto the worker context.
func (s *Service) Enqueue(ctx context.Context, jobType string, run func(ctx context.Context, runID string) (any, error)) (string, error) {
	id := uuid.NewString()
	if err := s.runs.CreateRun(ctx, Run{
		ID:        id,
		Type:      jobType,
		Status:    StatusQueued,
		Details:   json.RawMessage("{}"),
		StartedAt: time.Now().UTC(),
	}); err != nil {
		return "", err
	}
	select {
	case s.queue <- job{ID: id, Type: jobType, RequestID: requestctx.GetRequestID(ctx), Run: run}:
		return id, nil
	default:
		s.log.Warn().Str("job_type", jobType).Str("run_id", id).Msg("job queue full")
		s.finish(ctx, id, StatusFailed, map[string]any{"error": ErrQueueFull.Error()})
		return "", ErrQueueFull
	}
}

func (s *Service) Get(ctx context.Context, id string) (Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Run{}, ErrRunNotFound
	}
	return s.runs.GetRun(ctx, id)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.runJob(ctx, j)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) {
	ctx = requestctx.WithRequestID(ctx, j.RequestID)
	log := s.log.With().Str("job_type", j.Type).Str("run_id", j.ID).Str("request_id", j.RequestID).Logger()
	if err := s.runs.UpdateRun(ctx, j.ID, StatusRunning, []byte("{}"), false); err != nil {
		log.Warn().Err(err).Msg("job run update failed")
	}

	start := time.Now()
	details, err := j.Run(ctx, j.ID)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "details": details}
		log.Warn().Err(err).Msg("job run failed")
	} else {
		log.Info().Dur("elapsed", time.Since(start)).Msg("job run completed")
	}
	s.finish(ctx, j.ID, status, details)
}

func (s *Service) finish(ctx context.Context, id, status string, details any) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		s.log.Warn().Err(err).Msg("job details marshal failed")
		detailsJSON = []byte("{}")
	}
	if err := s.runs.UpdateRun(ctx, id, status, detailsJSON, true); err != nil {
		s.log.Warn().Err(err).Str("run_id", id).Msg("job run update failed")
	}
}
