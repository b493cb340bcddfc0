package auth

import "errors"

var (
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidToken covers forged, malformed, and expired login tokens.
	// One error for all three keeps verification failures uniform so callers
	// cannot probe which check rejected the token.
	ErrInvalidToken = errors.New("invalid or expired login token")

	ErrUnauthenticated = errors.New("not authenticated")
)
