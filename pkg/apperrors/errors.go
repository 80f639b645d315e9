package apperrors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrAuthRequired         = errors.New("authentication required")
	ErrProfileIncomplete    = errors.New("profile is missing birth data")
	ErrConfigurationMissing = errors.New("no active styles or segments are configured")
	ErrPersistenceFailure   = errors.New("generated content could not be durably stored")
)
