package models

import "errors"

// Domain specific errors for authentication, authorization and form input.
var (
	ErrNotFound         = errors.New("requested item not found")
	ErrUnauthenticated  = errors.New("authentication required or invalid credentials")
	ErrForbidden        = errors.New("action forbidden")
	ErrBadRequest       = errors.New("bad request")
	ErrValidation       = errors.New("validation failed")
	ErrNoSession        = errors.New("no active session")
	ErrEmptyToken       = errors.New("auth token cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
)
