package audit

import (
	"context"
	"encoding/json"
	"time"
)

const (
	ActionReferenceRefresh   = "reference.refresh"
	ActionBundleEnqueue      = "bundle_job.enqueue"
	ActionMemberFormGenerate = "member_form.generate"
)

// Entry is what a handler records after a state-changing request.
type Entry struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Before     any
	After      any
}

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorID    string
}

func (f Filter) matches(evt Event) bool {
	return (f.Action == "" || f.Action == evt.Action) &&
		(f.EntityType == "" || f.EntityType == evt.EntityType) &&
		(f.ActorID == "" || f.ActorID == evt.ActorID)
}

// Log stores and lists audit events. Store is backed by Postgres and
// MemoryStore keeps events for the life of the process.
type Log interface {
	Record(ctx context.Context, entry Entry) error
	Count(ctx context.Context, filter Filter) (int, error)
	List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error)
}

func marshalOptional(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
