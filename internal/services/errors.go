package services

import "errors"

// Sentinel errors shared by the services. Handlers map them to HTTP statuses
// with errors.Is; anything unrecognized becomes a 500.
var (
	ErrValidation         = errors.New("validation")
	ErrDuplicate          = errors.New("duplicate")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUpstream           = errors.New("upstream failure")
)
