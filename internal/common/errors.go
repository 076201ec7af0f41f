package common

// ValidationError carries a client-facing message for a rejected input.
// It matches ErrorInvalidInput via errors.Is.
type ValidationError struct {
	Message string
}

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports ErrorInvalidInput as the sentinel behind every validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrorInvalidInput
}
