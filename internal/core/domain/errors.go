package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAccessDenied       = errors.New("access denied")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// ErrPartialWrite marks the one known consistency hazard: the request record
// was written but the linked schedule entry update failed. The transaction is
// rolled back, yet callers must still see this case distinctly so an operator
// can reconcile request and schedule state.
var ErrPartialWrite = errors.New("request resolved but schedule entry update failed")
