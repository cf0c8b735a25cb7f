package services

import "errors"

// Sentinel errors the handlers translate into HTTP statuses.
var (
	ErrNotFound         = errors.New("application not found")
	ErrForbidden        = errors.New("access denied")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotEditable      = errors.New("application can no longer be modified")
	ErrAlreadySubmitted = errors.New("application already submitted")
	ErrSameStatus       = errors.New("application already has this status")
	ErrValidation       = errors.New("invalid input")
)
