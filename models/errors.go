package models

import "errors"

// Business rule errors
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyMember    = errors.New("user is already a member of the project")
	ErrDuplicatePending = errors.New("user already has a pending invitation")
	ErrInvalidState     = errors.New("invitation is not in an eligible state")
	ErrUnknownUser      = errors.New("unknown user")
)

// ErrStorage marks collaborator failures. Repositories wrap the driver error
// so callers can both match the kind and log the cause.
var ErrStorage = errors.New("storage failure")
