package domain

import "errors"

// Error taxonomy shared by every layer. Repositories and use cases wrap these
// with fmt.Errorf("%w: ...") and the delivery layer maps them to HTTP codes.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
)
