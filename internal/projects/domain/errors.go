package domain

import "errors"

var (
	ErrNotFound              = errors.New("project not found")
	ErrDuplicateID           = errors.New("project id already exists")
	ErrTitleRequired         = &ValidationError{Message: "title is required"}
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrArchiveRecordRequired = errors.New("archiving requires an archive record")
	ErrNotArchived           = errors.New("project is not archived")
)

// ValidationError is returned when user input is rejected before any storage call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
