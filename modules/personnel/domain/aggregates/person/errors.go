package person

import "fmt"

// ValidationError rejects malformed value objects before any mutation.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// DomainError is a business-rule violation. The message is safe to
// surface verbatim to an end user; nothing has been persisted.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// ConflictError signals a concurrent violation of a uniqueness or
// occupancy constraint. The caller should retry the whole
// read-modify-write cycle once.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewConflictError(code, message string) *ConflictError {
	return &ConflictError{Code: code, Message: message}
}

// NotFoundError keeps missing references distinct from rule violations.
type NotFoundError struct {
	Code    string
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFoundError(code, message string) *NotFoundError {
	return &NotFoundError{Code: code, Message: message}
}

var (
	ErrNotFound        = NewNotFoundError("PERSON_NOT_FOUND", "person not found")
	ErrVersionConflict = NewConflictError("PERSON_VERSION_CONFLICT", "person was modified concurrently")
)
