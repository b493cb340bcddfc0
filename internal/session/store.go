package session

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound covers both missing and expired sessions so callers
	// cannot distinguish the two cases.
	ErrSessionNotFound = errors.New("session not found")
)

// Store defines session persistence. There is no background sweep of expired
// rows; expiry is enforced on read, and stale rows accumulate until deleted
// by logout. Known resource-growth behavior, accepted for this scope.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, s *Session) error

	// Get returns the session by id, or ErrSessionNotFound when the id is
	// unknown or the session has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting a non-existent session is not an
	// error.
	Delete(ctx context.Context, id string) error
}
