package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planforge/internal/auth"
	"github.com/dmitrymomot/planforge/internal/billing"
	"github.com/dmitrymomot/planforge/internal/httpapi"
	"github.com/dmitrymomot/planforge/internal/plan"
	"github.com/dmitrymomot/planforge/internal/session"
	"github.com/dmitrymomot/planforge/internal/user"
)

type stubProvider struct {
	event     *billing.Event
	verifyErr error
}

func (p *stubProvider) CreateCustomer(ctx context.Context, email, name string, userID int64) (string, error) {
	return "cus_test", nil
}

func (p *stubProvider) CreateCheckoutSession(ctx context.Context, customerID string, userID int64, trialEnd time.Time) (*billing.CheckoutSession, error) {
	return &billing.CheckoutSession{ID: "cs_test", URL: "https://checkout.example.com/cs_test"}, nil
}

func (p *stubProvider) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	return "https://portal.example.com/" + customerID, nil
}

func (p *stubProvider) VerifyWebhook(payload []byte, signature string) (*billing.Event, error) {
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	if p.event != nil {
		return p.event, nil
	}
	return &billing.Event{Kind: billing.EventIgnored}, nil
}

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type stack struct {
	handler  http.Handler
	users    *user.MemoryRepository
	sessions *session.MemoryStore
	provider *stubProvider
	llm      *stubLLM
}

func newStack(t *testing.T) *stack {
	t.Helper()

	users := user.NewMemoryRepository()
	sessions := session.NewMemoryStore()
	cookies := session.NewCookieTransport(false)
	provider := &stubProvider{}
	llm := &stubLLM{response: `{"executiveSummary":"ok"}`}

	authSvc := auth.NewService(users, sessions, auth.Config{
		TokenSecret: "test-secret",
		AppURL:      "http://localhost:8080",
		SessionTTL:  7 * 24 * time.Hour,
		TokenTTL:    time.Hour,
	})
	billingSvc := billing.NewService(users, sessions, provider, billing.Config{TrialPeriod: 48 * time.Hour})
	planSvc := plan.NewService(plan.NewMemoryRepository(), llm)

	return &stack{
		handler: httpapi.NewRouter(httpapi.Deps{
			Auth:    authSvc,
			Billing: billingSvc,
			Plans:   planSvc,
			Gate:    httpapi.NewGate(sessions, users, nil),
			Cookies: cookies,
		}),
		users:    users,
		sessions: sessions,
		provider: provider,
		llm:      llm,
	}
}

func (s *stack) do(t *testing.T, method, path, body string, cookie string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

// loginAs runs the full magic link flow and returns the session id from the
// verify response cookie.
func (s *stack) loginAs(t *testing.T, email string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/auth/login", fmt.Sprintf(`{"email":%q}`, email), "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		LoginURL string `json:"loginUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	u, err := url.Parse(body.LoginURL)
	require.NoError(t, err)
	tok := u.Query().Get("token")
	require.NotEmpty(t, tok)

	w = s.do(t, http.MethodGet, "/api/auth/verify?token="+url.QueryEscape(tok), "", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/app", w.Header().Get("Location"))

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			assert.True(t, c.HttpOnly)
			assert.Equal(t, "/", c.Path)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
			return c.Value
		}
	}
	t.Fatal("verify response did not set a session cookie")
	return ""
}

// subscribe marks the session's user as trialing so gated routes open up.
func (s *stack) subscribe(t *testing.T, sessionID string) *user.User {
	t.Helper()

	ctx := context.Background()
	sess, err := s.sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	require.NoError(t, s.users.SetSubscription(ctx, sess.UserID, "sub_test", user.StatusTrialing, time.Now().Add(48*time.Hour)))

	u, err := s.users.GetByID(ctx, sess.UserID)
	require.NoError(t, err)
	return u
}

func TestHealth(t *testing.T) {
	t.Parallel()

	w := newStack(t).do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	_, err := time.Parse(time.RFC3339, body.Timestamp)
	assert.NoError(t, err)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	t.Run("login rejects malformed email", func(t *testing.T) {
		t.Parallel()

		w := newStack(t).do(t, http.MethodPost, "/api/auth/login", `{"email":"not-an-email"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})

	t.Run("login verify me round trip", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")

		w := s.do(t, http.MethodGet, "/api/auth/me", "", sid)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			User *auth.Profile `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.User)
		assert.Equal(t, "a@b.com", body.User.Email)
	})

	t.Run("verify rejects a forged token", func(t *testing.T) {
		t.Parallel()

		w := newStack(t).do(t, http.MethodGet, "/api/auth/verify?token=forged.sig", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("me without cookie is 401 with null user", func(t *testing.T) {
		t.Parallel()

		w := newStack(t).do(t, http.MethodGet, "/api/auth/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"user":null}`, w.Body.String())
	})

	t.Run("logout clears the cookie and kills the session", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")

		w := s.do(t, http.MethodPost, "/api/auth/logout", "", sid)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		var cleared bool
		for _, c := range w.Result().Cookies() {
			if c.Name == session.CookieName {
				cleared = c.MaxAge < 0 && c.Value == ""
			}
		}
		assert.True(t, cleared, "logout must clear the session cookie")

		w = s.do(t, http.MethodGet, "/api/auth/me", "", sid)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout without a session still redirects", func(t *testing.T) {
		t.Parallel()

		w := newStack(t).do(t, http.MethodPost, "/api/auth/logout", "", "")
		assert.Equal(t, http.StatusFound, w.Code)
	})
}

func TestAccessGate(t *testing.T) {
	t.Parallel()

	t.Run("no cookie is 401", func(t *testing.T) {
		t.Parallel()

		w := newStack(t).do(t, http.MethodGet, "/api/plans", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown session id is 401", func(t *testing.T) {
		t.Parallel()

		w := newStack(t).do(t, http.MethodGet, "/api/plans", "", "deadbeef")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("session without subscription is 403", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")

		w := s.do(t, http.MethodPost, "/api/generate", `{"businessName":"X","industry":"Y","description":"Z"}`, sid)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("canceled status with past trial is 403", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")

		ctx := context.Background()
		sess, err := s.sessions.Get(ctx, sid)
		require.NoError(t, err)
		require.NoError(t, s.users.SetSubscription(ctx, sess.UserID, "sub_x", user.StatusCanceled, time.Now().Add(-time.Hour)))

		w := s.do(t, http.MethodPost, "/api/generate", `{"businessName":"X","industry":"Y","description":"Z"}`, sid)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("trialing session passes", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")
		s.subscribe(t, sid)

		w := s.do(t, http.MethodGet, "/api/plans", "", sid)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPlanRoutes(t *testing.T) {
	t.Parallel()

	type generateResponse struct {
		Success bool            `json:"success"`
		PlanID  int64           `json:"planId"`
		Content json.RawMessage `json:"content"`
	}

	t.Run("generate returns plan id and content", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")
		s.subscribe(t, sid)

		w := s.do(t, http.MethodPost, "/api/generate", `{"businessName":"Boulangerie","industry":"Alimentation","description":"Pain"}`, sid)
		require.Equal(t, http.StatusOK, w.Code)

		var body generateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.NotZero(t, body.PlanID)
		assert.JSONEq(t, `{"executiveSummary":"ok"}`, string(body.Content))
	})

	t.Run("generate with missing fields is 400", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")
		s.subscribe(t, sid)

		w := s.do(t, http.MethodPost, "/api/generate", `{"businessName":"X"}`, sid)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("generation upstream failure still answers 200 with fallback", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		s.llm.err = errors.New("model unavailable")
		sid := s.loginAs(t, "a@b.com")
		s.subscribe(t, sid)

		w := s.do(t, http.MethodPost, "/api/generate", `{"businessName":"Boulangerie Lune","industry":"Alimentation","description":"Pain"}`, sid)
		require.Equal(t, http.StatusOK, w.Code)

		var body generateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, string(body.Content), "Boulangerie Lune")
	})

	t.Run("plan crud and ownership", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		owner := s.loginAs(t, "owner@b.com")
		s.subscribe(t, owner)

		w := s.do(t, http.MethodPost, "/api/generate", `{"businessName":"X","industry":"Y","description":"Z"}`, owner)
		require.Equal(t, http.StatusOK, w.Code)
		var created generateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		// List shows the plan without content.
		w = s.do(t, http.MethodGet, "/api/plans", "", owner)
		require.Equal(t, http.StatusOK, w.Code)
		var list struct {
			Plans []plan.Summary `json:"plans"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list.Plans, 1)
		assert.Equal(t, created.PlanID, list.Plans[0].ID)

		// Update then get round-trips the content.
		path := fmt.Sprintf("/api/plans/%d", created.PlanID)
		w = s.do(t, http.MethodPut, path, `{"content":{"executiveSummary":"révisé"}}`, owner)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodGet, path, "", owner)
		require.Equal(t, http.StatusOK, w.Code)
		var got struct {
			Plan plan.Plan `json:"plan"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.JSONEq(t, `{"executiveSummary":"révisé"}`, string(got.Plan.Content))

		// Another user sees 404, never 403, for both reads and writes.
		other := s.loginAs(t, "other@b.com")
		s.subscribe(t, other)
		w = s.do(t, http.MethodGet, path, "", other)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = s.do(t, http.MethodPut, path, `{"content":{}}`, other)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = s.do(t, http.MethodGet, "/api/plans", "", other)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Empty(t, list.Plans)
	})

	t.Run("non-numeric plan id is 404", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")
		s.subscribe(t, sid)

		w := s.do(t, http.MethodGet, "/api/plans/abc", "", sid)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStripeRoutes(t *testing.T) {
	t.Parallel()

	t.Run("checkout returns hosted session", func(t *testing.T) {
		t.Parallel()

		w := newStack(t).do(t, http.MethodPost, "/api/stripe/checkout", `{"email":"buyer@b.com","name":"Buyer"}`, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"sessionId":"cs_test","url":"https://checkout.example.com/cs_test"}`, w.Body.String())
	})

	t.Run("portal without session is 401", func(t *testing.T) {
		t.Parallel()

		w := newStack(t).do(t, http.MethodPost, "/api/stripe/portal", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("portal without billing customer is 400", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")

		w := s.do(t, http.MethodPost, "/api/stripe/portal", "", sid)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("portal with billing customer returns url", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")

		ctx := context.Background()
		sess, err := s.sessions.Get(ctx, sid)
		require.NoError(t, err)
		require.NoError(t, s.users.SetStripeCustomer(ctx, sess.UserID, "cus_42"))

		w := s.do(t, http.MethodPost, "/api/stripe/portal", "", sid)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"url":"https://portal.example.com/cus_42"}`, w.Body.String())
	})

	t.Run("webhook without signature is 400 and changes nothing", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{}`))
		s.handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		ctx := context.Background()
		sess, err := s.sessions.Get(ctx, sid)
		require.NoError(t, err)
		u, err := s.users.GetByID(ctx, sess.UserID)
		require.NoError(t, err)
		assert.Equal(t, user.StatusNone, u.SubscriptionStatus)
	})

	t.Run("webhook with bad signature is 400", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		s.provider.verifyErr = billing.ErrInvalidSignature

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{}`))
		r.Header.Set("Stripe-Signature", "t=1,v1=bad")
		s.handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("checkout completion moves the user to trialing", func(t *testing.T) {
		t.Parallel()

		s := newStack(t)
		sid := s.loginAs(t, "a@b.com")

		ctx := context.Background()
		sess, err := s.sessions.Get(ctx, sid)
		require.NoError(t, err)

		s.provider.event = &billing.Event{
			Kind:           billing.EventCheckoutCompleted,
			ProviderType:   "checkout.session.completed",
			UserID:         fmt.Sprintf("%d", sess.UserID),
			SubscriptionID: "sub_hook",
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{}`))
		r.Header.Set("Stripe-Signature", "t=1,v1=ok")
		s.handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())

		u, err := s.users.GetByID(ctx, sess.UserID)
		require.NoError(t, err)
		assert.Equal(t, user.StatusTrialing, u.SubscriptionStatus)
		require.NotNil(t, u.TrialEndsAt)
		assert.WithinDuration(t, time.Now().Add(48*time.Hour), *u.TrialEndsAt, time.Minute)
	})
}
