package billing

import "errors"

var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrNoBillingCustomer = errors.New("no billing customer for user")

	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")

	ErrProviderFailure = errors.New("billing provider request failed")
)
