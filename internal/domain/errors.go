package domain

import "errors"

// Error taxonomy shared by every service. The API layer maps these to HTTP
// statuses (404, 403, 400, 409); anything else becomes a generic 500.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
	ErrConflict       = errors.New("conflict")
)
