// Package errs defines the error taxonomy of the data layer.
//
// Its purpose is to let callers tell apart outcomes that need different
// handling: a record that does not exist, a write rejected by a database
// constraint, a database that cannot be reached, invalid input, and
// everything else.
//
// - Every error is an *Error carrying a Kind, a machine code and a message.
// - Field-level validation errors travel in Errors.
// - The underlying driver error stays reachable through Unwrap.
package errs
