package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/planforge/internal/session"
	"github.com/dmitrymomot/planforge/internal/user"
	"github.com/dmitrymomot/planforge/pkg/logger"
	"github.com/dmitrymomot/planforge/pkg/token"
)

// Config holds auth settings sourced from the environment.
type Config struct {
	TokenSecret string        `env:"JWT_SECRET,required"`
	AppURL      string        `env:"APP_URL" envDefault:"http://localhost:8080"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	TokenTTL    time.Duration `env:"LOGIN_TOKEN_TTL" envDefault:"1h"`
}

// tokenClaims is the payload embedded in magic link tokens.
type tokenClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
}

// LoginResult carries the magic link issued for a login request. The session
// id is included for immediate login during testing; production would email
// the URL instead of returning it.
type LoginResult struct {
	LoginURL  string
	SessionID string
}

// Profile is the user projection exposed to authenticated callers. Provider
// identifiers (customer id, subscription id) stay server-side.
type Profile struct {
	ID                 int64       `json:"id"`
	Email              string      `json:"email"`
	Name               *string     `json:"name,omitempty"`
	SubscriptionStatus user.Status `json:"subscription_status"`
	TrialEndsAt        *time.Time  `json:"trial_end_date,omitempty"`
}

// Service implements passwordless authentication via magic links.
type Service struct {
	users    user.Repository
	sessions session.Store
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source, used by tests to exercise expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the auth service.
func NewService(users user.Repository, sessions session.Store, cfg Config, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      logger.NewDiscard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestLogin performs get-or-create on the user, opens a fresh session, and
// returns a signed, time-boxed verification link. Every call creates a new
// session row even when one already exists for the user; sessions are cheap
// and deduplication is not worth the coordination.
func (s *Service) RequestLogin(ctx context.Context, email string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		u, err = s.users.Create(ctx, email, nil)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.log.InfoContext(ctx, "user registered via login", "user_id", u.ID)
	}

	sess := session.New(u.ID, s.cfg.SessionTTL)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	tok, err := token.Generate(tokenClaims{
		SessionID: sess.ID,
		Email:     email,
		ExpiresAt: s.now().Add(s.cfg.TokenTTL).Unix(),
	}, s.cfg.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("generate login token: %w", err)
	}

	return &LoginResult{
		LoginURL:  s.cfg.AppURL + "/api/auth/verify?token=" + url.QueryEscape(tok),
		SessionID: sess.ID,
	}, nil
}

// Verify checks the magic link token and returns the session id it carries.
// Signature failures, malformed tokens, and expired tokens all map to
// ErrInvalidToken.
func (s *Service) Verify(ctx context.Context, tok string) (string, error) {
	claims, err := token.Parse[tokenClaims](tok, s.cfg.TokenSecret)
	if err != nil {
		return "", ErrInvalidToken
	}
	if s.now().Unix() >= claims.ExpiresAt {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

// Logout deletes the session if one is identified. Unconditional and
// idempotent; an unknown or empty session id is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves a session id to the owning user's profile. Missing,
// unknown, and expired sessions all yield ErrUnauthenticated.
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*Profile, error) {
	if sessionID == "" {
		return nil, ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &Profile{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		SubscriptionStatus: u.SubscriptionStatus,
		TrialEndsAt:        u.TrialEndsAt,
	}, nil
}

// SessionTTL exposes the configured session lifetime for cookie max-age.
func (s *Service) SessionTTL() time.Duration {
	return s.cfg.SessionTTL
}
