package errs

// NewNotFoundError creates a KindNotFound error.
//
// code is optional; nil falls back to "NOT_FOUND".
func NewNotFoundError(message string, code *string) *Error {
	return newError(KindNotFound, message, code, nil, nil)
}

// NewConstraintError creates a KindConstraint error for a write the
// database refused. cause is the driver error and stays reachable via Unwrap.
func NewConstraintError(message string, code *string, fieldErrors []FieldError, cause error) *Error {
	return newError(KindConstraint, message, code, fieldErrors, cause)
}

// NewConnectionError wraps a failure to reach the database.
func NewConnectionError(cause error) *Error {
	return newError(KindConnection, "The database is unavailable", nil, nil, cause)
}

// NewInvalidError creates a KindInvalid error, optionally with field errors.
func NewInvalidError(message string, fieldErrors []FieldError) *Error {
	return newError(KindInvalid, message, nil, fieldErrors, nil)
}

// NewUnauthorizedError creates a KindUnauthorized error.
func NewUnauthorizedError(message string) *Error {
	return newError(KindUnauthorized, message, nil, nil, nil)
}

// NewInternalError wraps an unexpected failure.
//
// The message is generic on purpose; the cause is kept for logs only.
func NewInternalError(cause error) *Error {
	return newError(KindInternal, "An error occurred while processing your request", nil, nil, cause)
}

// ValidationError converts a plain validation error into a KindInvalid Error.
func ValidationError(err error) *Error {
	return NewInvalidError("Validation failed: "+err.Error(), nil)
}

func newError(kind Kind, message string, code *string, fieldErrors []FieldError, cause error) *Error {
	formattedCode := kind.String()
	if code != nil {
		formattedCode = *code
	}

	return &Error{
		Kind:    kind,
		Code:    formattedCode,
		Message: message,
		Errors:  fieldErrors,
		Err:     cause,
	}
}
