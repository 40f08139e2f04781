package errs

import (
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	// KindInternal is any failure the caller cannot act on.
	KindInternal Kind = iota

	// KindNotFound means the addressed record does not exist.
	KindNotFound

	// KindConstraint means the database rejected a write
	// (unique, foreign key, not-null or check violation).
	KindConstraint

	// KindConnection means the database could not be reached or the
	// statement timed out before it completed.
	KindConnection

	// KindInvalid means the input was rejected before any query ran.
	KindInvalid

	// KindUnauthorized means credentials did not match.
	KindUnauthorized
)

// String returns the upper case name used as the default Code.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindConstraint:
		return "CONSTRAINT_VIOLATION"
	case KindConnection:
		return "CONNECTION_ERROR"
	case KindInvalid:
		return "INVALID_INPUT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_ERROR"
	}
}

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "email", "error": "must be a valid email address" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is the error type returned by every repository and service.
//
// Fields:
//   - Kind: category used by errors.Is against the sentinels below.
//   - Code: machine-friendly code (e.g. "USER_ALREADY_EXISTS").
//   - Message: human-friendly message, safe to show to end users.
//   - Errors: per-field validation errors.
//   - Err: the underlying cause (driver error), if any.
type Error struct {
	Kind    Kind         `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// Sentinels for errors.Is. They only carry a Kind.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConstraint   = &Error{Kind: KindConstraint}
	ErrConnection   = &Error{Kind: KindConnection}
	ErrInvalid      = &Error{Kind: KindInvalid}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrInternal     = &Error{Kind: KindInternal}
)

// Error returns the message, followed by the cause when there is one.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the cause so errors.As can still reach *pgconn.PgError.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
//
// Code and Message are deliberately ignored, so
// errors.Is(err, errs.ErrNotFound) matches every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithMessage returns a copy of this Error with Message replaced.
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: message,
		Errors:  e.Errors,
		Err:     e.Err,
	}
}

// KindOf returns the Kind of the first *Error in err's chain,
// KindInternal when there is none.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return KindInternal
}

// MakeUpperCaseWithUnderscores converts a string into UPPER_CASE_WITH_UNDERSCORES.
//
// Example:
//
//	"already exists" -> "ALREADY_EXISTS"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
