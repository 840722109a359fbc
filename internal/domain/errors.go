package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")

	// ErrConfiguration is returned when the token service has no signing secret.
	ErrConfiguration = errors.New("configuration error")

	// Token validation failures. Callers collapse all of them into
	// ErrUnauthorized before anything reaches a client.
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
)
