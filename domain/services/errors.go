package services

// ValidationError marks invalid user input. Handlers surface the
// message to the invoking actor; no state was mutated.
type ValidationError struct {
	Message string
}

// NewValidationError creates a validation error with a user-facing message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}
