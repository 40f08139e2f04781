// Package validation contains the logic for validating
// input data before it reaches the database.
//
// It uses the `validator` library to enforce rules (like
// required fields or email formats) defined in struct tags
// and converts validation errors into errs field errors
package validation
