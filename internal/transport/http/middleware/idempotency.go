package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyTTL is how long a job submission key is remembered.
const IdempotencyTTL = 24 * time.Hour

var ErrIdempotencyConflict = errors.New("idempotency key was already used with a different request")

// IdempotencyStore remembers the response of a job submission per user,
// endpoint and key. It is backed by Postgres when built with a pool and by
// process memory otherwise. A nil store disables the check.
type IdempotencyStore struct {
	db  *pgxpool.Pool
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]idempotencyEntry
}

type idempotencyEntry struct {
	hash     string
	response json.RawMessage
	saved    time.Time
}

func NewIdempotencyStore(db *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{db: db, ttl: IdempotencyTTL, now: time.Now}
}

func NewMemoryIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{ttl: IdempotencyTTL, now: time.Now, entries: map[string]idempotencyEntry{}}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func entryKey(userID, endpoint, key string) string {
	return userID + "\x00" + endpoint + "\x00" + key
}

// Check returns the stored response for a repeated key. A key reused with a
// different request body yields ErrIdempotencyConflict until it expires.
func (s *IdempotencyStore) Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	switch {
	case s == nil:
		return nil, false, nil
	case s.db == nil:
		return s.checkMemory(userID, endpoint, key, requestHash)
	}
	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
      AND created_at > now() - make_interval(secs => $4)
  `, userID, key, endpoint, s.ttl.Seconds()).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	switch {
	case s == nil:
		return nil
	case s.db == nil:
		return s.saveMemory(userID, endpoint, key, requestHash, response)
	}
	// An expired row is overwritten in place.
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (user_id, key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (user_id, key, endpoint)
    DO UPDATE SET response_json = EXCLUDED.response_json,
                  request_hash = EXCLUDED.request_hash,
                  created_at = now()
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
       OR idempotency_keys.created_at <= now() - make_interval(secs => $6)
  `, userID, key, endpoint, requestHash, response, s.ttl.Seconds())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

func (s *IdempotencyStore) live(k string) (idempotencyEntry, bool) {
	entry, ok := s.entries[k]
	if !ok {
		return idempotencyEntry{}, false
	}
	if s.now().Sub(entry.saved) >= s.ttl {
		delete(s.entries, k)
		return idempotencyEntry{}, false
	}
	return entry, true
}

func (s *IdempotencyStore) checkMemory(userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.live(entryKey(userID, endpoint, key))
	if !ok {
		return nil, false, nil
	}
	if entry.hash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return entry.response, true, nil
}

func (s *IdempotencyStore) saveMemory(userID, endpoint, key, requestHash string, response json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := entryKey(userID, endpoint, key)
	if entry, ok := s.live(k); ok && entry.hash != requestHash {
		return ErrIdempotencyConflict
	}
	s.entries[k] = idempotencyEntry{hash: requestHash, response: response, saved: s.now()}
	return nil
}
