package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/planforge/internal/auth"
	"github.com/dmitrymomot/planforge/internal/billing"
	"github.com/dmitrymomot/planforge/internal/plan"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain sentinels to HTTP statuses. Anything unmapped is a
// 500 with a generic message so provider error bodies never reach clients.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, plan.ErrMissingFields),
		errors.Is(err, billing.ErrNoBillingCustomer),
		errors.Is(err, billing.ErrMissingSignature),
		errors.Is(err, billing.ErrInvalidSignature),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, auth.ErrUnauthenticated):
		status = http.StatusUnauthorized
		msg = err.Error()
	case errors.Is(err, ErrSubscriptionRequired):
		status = http.StatusForbidden
		msg = err.Error()
	case errors.Is(err, plan.ErrPlanNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("invalid request")
