package auth_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planforge/internal/auth"
	"github.com/dmitrymomot/planforge/internal/session"
	"github.com/dmitrymomot/planforge/internal/user"
)

const testSecret = "test-secret-32-chars-long-12345"

func testConfig() auth.Config {
	return auth.Config{
		TokenSecret: testSecret,
		AppURL:      "http://localhost:8080",
		SessionTTL:  7 * 24 * time.Hour,
		TokenTTL:    time.Hour,
	}
}

func newService(t *testing.T, opts ...auth.Option) (*auth.Service, user.Repository, *session.MemoryStore) {
	t.Helper()
	users := user.NewMemoryRepository()
	sessions := session.NewMemoryStore()
	return auth.NewService(users, sessions, testConfig(), opts...), users, sessions
}

func tokenFromURL(t *testing.T, loginURL string) string {
	t.Helper()
	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	tok := u.Query().Get("token")
	require.NotEmpty(t, tok)
	return tok
}

func TestRequestLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rejects emails without @", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		for _, email := range []string{"", "plain", "user.example.com", "   "} {
			_, err := svc.RequestLogin(ctx, email)
			assert.ErrorIs(t, err, auth.ErrInvalidEmail, "email %q", email)
		}
	})

	t.Run("creates user and session for new email", func(t *testing.T) {
		t.Parallel()

		svc, users, sessions := newService(t)
		res, err := svc.RequestLogin(ctx, "a@b.com")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.LoginURL, "http://localhost:8080/api/auth/verify?token="))

		u, err := users.GetByEmail(ctx, "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, user.StatusNone, u.SubscriptionStatus)

		sess, err := sessions.Get(ctx, res.SessionID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, sess.UserID)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), sess.ExpiresAt, 2*time.Second)
	})

	t.Run("reuses existing user but always opens a new session", func(t *testing.T) {
		t.Parallel()

		svc, users, sessions := newService(t)
		first, err := svc.RequestLogin(ctx, "a@b.com")
		require.NoError(t, err)
		second, err := svc.RequestLogin(ctx, "a@b.com")
		require.NoError(t, err)

		assert.NotEqual(t, first.SessionID, second.SessionID)
		assert.Equal(t, 2, sessions.Len())

		u, err := users.GetByEmail(ctx, "a@b.com")
		require.NoError(t, err)
		s1, err := sessions.Get(ctx, first.SessionID)
		require.NoError(t, err)
		s2, err := sessions.Get(ctx, second.SessionID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, s1.UserID)
		assert.Equal(t, u.ID, s2.UserID)
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid token yields its session id", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		res, err := svc.RequestLogin(ctx, "a@b.com")
		require.NoError(t, err)

		sid, err := svc.Verify(ctx, tokenFromURL(t, res.LoginURL))
		require.NoError(t, err)
		assert.Equal(t, res.SessionID, sid)
	})

	t.Run("forged and malformed tokens fail uniformly", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		for _, tok := range []string{"", "garbage", "e30.AAAA", "a.b.c"} {
			_, err := svc.Verify(ctx, tok)
			assert.ErrorIs(t, err, auth.ErrInvalidToken, "token %q", tok)
		}
	})

	t.Run("expired token fails with the same error as a forged one", func(t *testing.T) {
		t.Parallel()

		users := user.NewMemoryRepository()
		sessions := session.NewMemoryStore()

		issued := time.Now()
		clock := issued
		svc := auth.NewService(users, sessions, testConfig(), auth.WithClock(func() time.Time { return clock }))

		res, err := svc.RequestLogin(ctx, "a@b.com")
		require.NoError(t, err)
		tok := tokenFromURL(t, res.LoginURL)

		clock = issued.Add(61 * time.Minute)
		_, err = svc.Verify(ctx, tok)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)

		// Same error class as a forgery, no distinction.
		_, forgedErr := svc.Verify(ctx, "forged")
		assert.Equal(t, forgedErr, err)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("deletes the session", func(t *testing.T) {
		t.Parallel()

		svc, _, sessions := newService(t)
		res, err := svc.RequestLogin(ctx, "a@b.com")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, res.SessionID))
		_, err = sessions.Get(ctx, res.SessionID)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("idempotent for unknown and empty ids", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		assert.NoError(t, svc.Logout(ctx, "never-existed"))
		assert.NoError(t, svc.Logout(ctx, ""))
	})
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("login then verify then current user", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		res, err := svc.RequestLogin(ctx, "a@b.com")
		require.NoError(t, err)

		sid, err := svc.Verify(ctx, tokenFromURL(t, res.LoginURL))
		require.NoError(t, err)

		profile, err := svc.CurrentUser(ctx, sid)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", profile.Email)
		assert.Equal(t, user.StatusNone, profile.SubscriptionStatus)
	})

	t.Run("missing session id", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		_, err := svc.CurrentUser(ctx, "")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("expired session equals missing session", func(t *testing.T) {
		t.Parallel()

		users := user.NewMemoryRepository()
		sessions := session.NewMemoryStore()
		svc := auth.NewService(users, sessions, testConfig())

		u, err := users.Create(ctx, "a@b.com", nil)
		require.NoError(t, err)
		expired := &session.Session{ID: "expired-sid", UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}
		require.NoError(t, sessions.Create(ctx, expired))

		_, expiredErr := svc.CurrentUser(ctx, "expired-sid")
		assert.ErrorIs(t, expiredErr, auth.ErrUnauthenticated)

		_, missingErr := svc.CurrentUser(ctx, "missing-sid")
		assert.Equal(t, missingErr, expiredErr)
	})
}
