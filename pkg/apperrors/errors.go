package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateSelection = errors.New("gift already selected for this recipient")
	ErrInvalidStatus      = errors.New("invalid gift status")
	ErrUnauthorized       = errors.New("unauthorized")
)
