package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/planforge/internal/auth"
	"github.com/dmitrymomot/planforge/internal/session"
	"github.com/dmitrymomot/planforge/internal/user"
)

type ctxKey int

const userCtxKey ctxKey = 0

// Gate authorizes requests against the session store and the user's
// subscription state. It is a pure lookup with no side effects so it can be
// called directly in tests without going through the middleware.
type Gate struct {
	sessions session.Store
	users    user.Repository
	now      func() time.Time
}

// NewGate creates a Gate. A nil clock defaults to time.Now.
func NewGate(sessions session.Store, users user.Repository, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{sessions: sessions, users: users, now: now}
}

// Authorize resolves a session id to its user and checks access eligibility.
// An empty, unknown, or expired session yields ErrUnauthenticated; a valid
// session without paid or trial access yields ErrSubscriptionRequired.
func (g *Gate) Authorize(ctx context.Context, sessionID string) (*user.User, error) {
	if sessionID == "" {
		return nil, auth.ErrUnauthenticated
	}
	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, auth.ErrUnauthenticated
		}
		return nil, err
	}
	u, err := g.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, auth.ErrUnauthenticated
		}
		return nil, err
	}
	if !u.HasAccess(g.now()) {
		return nil, ErrSubscriptionRequired
	}
	return u, nil
}

// Middleware wraps handlers that serve per-user data. It extracts the
// session id from the cookie, authorizes it, and stores the resolved user in
// the request context for userFromContext.
func (g *Gate) Middleware(cookies *session.CookieTransport) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := g.Authorize(r.Context(), cookies.SessionID(r))
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
		})
	}
}

func withUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// userFromContext returns the user attached by the gate middleware.
func userFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*user.User)
	return u, ok
}
