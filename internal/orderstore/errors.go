package orderstore

import "errors"

// Store-side error kinds. Handlers map these onto the wire contract:
// NotFound -> 404, InvalidState -> 409, InvalidPassword -> 401 with a
// password-specific message, Validation -> 400.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("order is not in the required status")
	ErrInvalidPassword = errors.New("invalid password")
	ErrValidation      = errors.New("validation failed")
	ErrDuplicate       = errors.New("already exists")
)
