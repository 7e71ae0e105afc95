package domain

import "errors"

// Sentinel errors for the identity core. All of them are local and
// non-retryable; the API layer translates them into the JSON error envelope
// and nothing below that layer inspects HTTP status codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrPrincipalNotFound  = errors.New("principal not found")
	ErrPrincipalInactive  = errors.New("principal is inactive")
	ErrPrincipalExists    = errors.New("principal already exists")
	ErrForbidden          = errors.New("access forbidden")
)
