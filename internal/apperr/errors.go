package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrNoSession       = errors.New("no active session")
	ErrNotInCarousel   = errors.New("note is not in the carousel set")
	ErrAINotConfigured = errors.New("ai service is not configured")
)
