package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gavelworks/auction-service/internal/domain"
)

// ErrNotFound is returned when no session record exists for a key.
var ErrNotFound = errors.New("session not found")

// Record is the server-side view of one established session: the credential
// id, an identity snapshot, and the active role chosen at login. It is
// written and removed as one unit; a reader never observes partial state.
type Record struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	FullName   string      `json:"fullName"`
	Email      string      `json:"email"`
	ActiveRole domain.Role `json:"activeRole"`
	IssuedAt   time.Time   `json:"issuedAt"`
	ExpiresAt  time.Time   `json:"expiresAt"`
}

// Store keeps session records in Redis, keyed by session id. A deleted or
// expired record revokes the matching bearer token.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds a session store with the given record lifetime.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(id string) string {
	return "session:" + id
}

// Put persists the record atomically as a single value with TTL.
func (s *Store) Put(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := s.ttl
	if until := time.Until(rec.ExpiresAt); until > 0 && until < ttl {
		ttl = until
	}
	return s.client.Set(ctx, key(rec.ID), payload, ttl).Err()
}

// Get fetches the record for the session id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	payload, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		// A corrupt record degrades to "not authenticated" rather than a
		// hard failure; the caller treats it like a missing session.
		_ = s.client.Del(ctx, key(id)).Err()
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Delete removes the record. Deleting an absent record is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, key(id)).Err()
}
