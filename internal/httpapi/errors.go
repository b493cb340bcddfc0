package httpapi

import "errors"

var (
	// ErrSubscriptionRequired means the session is valid but the user has
	// neither an active/trialing subscription nor a live trial window.
	ErrSubscriptionRequired = errors.New("subscription required")
)
