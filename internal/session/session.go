package session

import (
	"time"

	"github.com/google/uuid"
)

// Session maps an opaque id to a user and an absolute expiry. Possession of
// the id implies authentication; there is no per-session secret beyond it.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New creates a session for the given user with a cryptographically random id.
func New(userID int64, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// IsExpired reports whether the session has passed its expiry. Expired
// sessions must be treated as absent by every consumer, never specially
// reported.
func (s *Session) IsExpired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}
