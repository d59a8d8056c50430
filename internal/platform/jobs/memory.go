package jobs

import (
	"context"
	"sync"
	"time"
)

// MemoryRunStore keeps runs in process.
type MemoryRunStore struct {
	mu   sync.Mutex
	runs map[string]Run
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]Run)}
}

func (m *MemoryRunStore) CreateRun(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *MemoryRunStore) UpdateRun(_ context.Context, id, status string, details []byte, done bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrRunNotFound
	}
	run.Status = status
	run.Details = append([]byte(nil), details...)
	if done {
		now := time.Now().UTC()
		run.CompletedAt = &now
	}
	m.runs[id] = run
	return nil
}

func (m *MemoryRunStore) GetRun(_ context.Context, id string) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return run, nil
}
