package jobs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRunStore keeps job runs in the job_runs table.
type PGRunStore struct {
	DB *pgxpool.Pool
}

func NewPGRunStore(db *pgxpool.Pool) *PGRunStore {
	return &PGRunStore{DB: db}
}

func (s *PGRunStore) CreateRun(ctx context.Context, run Run) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, status, details_json, started_at)
    VALUES ($1,$2,$3,$4,$5)
  `, run.ID, run.Type, run.Status, []byte(run.Details), run.StartedAt)
	return err
}

func (s *PGRunStore) UpdateRun(ctx context.Context, id, status string, details []byte, done bool) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1,
        details_json = $2,
        completed_at = CASE WHEN $3 THEN now() ELSE completed_at END
    WHERE id = $4
  `, status, details, done, id)
	return err
}

func (s *PGRunStore) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	var details []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    WHERE id = $1
  `, id).Scan(&run.ID, &run.Type, &run.Status, &details, &run.StartedAt, &run.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, err
	}
	run.Details = details
	return run, nil
}
