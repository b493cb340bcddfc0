package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/planforge/internal/auth"
	"github.com/dmitrymomot/planforge/internal/plan"
)

const maxWebhookBody = 1 << 20

func (rt *router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (rt *router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errBadRequest)
		return
	}

	result, err := rt.auth.RequestLogin(r.Context(), body.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"loginUrl":  result.LoginURL,
		"sessionId": result.SessionID,
	})
}

func (rt *router) handleVerify(w http.ResponseWriter, r *http.Request) {
	sessionID, err := rt.auth.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return
	}

	rt.cookies.Set(w, sessionID, rt.auth.SessionTTL())
	http.Redirect(w, r, "/app", http.StatusFound)
}

func (rt *router) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := rt.auth.Logout(r.Context(), rt.cookies.SessionID(r)); err != nil {
		writeError(w, err)
		return
	}

	rt.cookies.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (rt *router) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := rt.auth.CurrentUser(r.Context(), rt.cookies.SessionID(r))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"user": nil})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": profile})
}

func (rt *router) handleGenerate(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrUnauthenticated)
		return
	}

	var in plan.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, errBadRequest)
		return
	}

	created, err := rt.plans.Generate(r.Context(), u.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"planId":  created.ID,
		"content": created.Content,
	})
}

func (rt *router) handleListPlans(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrUnauthenticated)
		return
	}

	plans, err := rt.plans.List(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (rt *router) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrUnauthenticated)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, plan.ErrPlanNotFound)
		return
	}

	p, err := rt.plans.Get(r.Context(), u.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"plan": p})
}

func (rt *router) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrUnauthenticated)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, plan.ErrPlanNotFound)
		return
	}

	var body struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Content) == 0 {
		writeError(w, errBadRequest)
		return
	}

	if err := rt.plans.Update(r.Context(), u.ID, id, body.Content); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (rt *router) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errBadRequest)
		return
	}

	sess, err := rt.billing.CreateCheckout(r.Context(), body.Email, body.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}

func (rt *router) handlePortal(w http.ResponseWriter, r *http.Request) {
	url, err := rt.billing.CreatePortal(r.Context(), rt.cookies.SessionID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (rt *router) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, errBadRequest)
		return
	}

	if err := rt.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}
