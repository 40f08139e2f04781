package sqlerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/deppfellow/lightbnb/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// uniqueConstraintRe matches "<table>_<column>_key" / "<table>_<column>_ukey".
var uniqueConstraintRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// ErrCode reports the mapped Code for an error already converted into *Error.
// Anything else reports Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError converts a raw *pgconn.PgError into our *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// HandleError converts a low-level database error into an *errs.Error.
//
// Mapping:
//   - *errs.Error: returned unchanged
//   - *pgconn.PgError with a 23xxx constraint code: KindConstraint with a
//     generated code (USER_ALREADY_EXISTS, PROPERTY_NOT_FOUND, ...)
//   - invalid input syntax / out of range values: KindInvalid
//   - class 08 SQLSTATE, connect failures, timeouts: KindConnection
//   - pgx.ErrNoRows / sql.ErrNoRows: KindNotFound
//   - anything else: KindInternal
//
// The original error is kept as the cause, so errors.As(err, *pgconn.PgError)
// keeps working for callers that need the raw SQLSTATE.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromPgError(ConvertPgError(pgErr), err)
	}

	if isConnectionError(err) {
		return errs.NewConnectionError(err)
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		e := errs.NewNotFoundError("Resource not found", nil)
		e.Err = err
		return e
	}

	return errs.NewInternalError(err)
}

// NotFound builds the not-found error for a row of table, e.g.
// NotFound("reservations") -> RESERVATION_NOT_FOUND, "Reservation not found".
func NotFound(table string) *errs.Error {
	code := generateErrorCode(table, Other)
	code = strings.TrimSuffix(code, "_ERROR") + "_NOT_FOUND"
	return errs.NewNotFoundError(fmt.Sprintf("%s not found", getEntityName(table, "")), &code)
}

func fromPgError(sqlErr *Error, cause error) error {
	// Postgres leaves ColumnName empty for foreign key violations; the
	// default constraint name "<table>_<column>_fkey" still carries it.
	if sqlErr.Code == ForeignKeyViolation && sqlErr.ColumnName == "" {
		sqlErr.ColumnName = extractColumnForForeignKey(sqlErr.TableName, sqlErr.ConstraintName)
	}

	errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
	if sqlErr.Code == ForeignKeyViolation && sqlErr.ColumnName != "" {
		// The missing row is the referenced one: guest_id -> GUEST_NOT_FOUND.
		errorCode = generateErrorCode(strings.TrimSuffix(sqlErr.ColumnName, "_id"), sqlErr.Code)
	}
	userMessage := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case ForeignKeyViolation, CheckViolation, ExclusionViolation:
		return errs.NewConstraintError(userMessage, &errorCode, nil, cause)

	case UniqueViolation:
		// Swap the "identifier" placeholder for the column, when the
		// constraint name follows one of the usual conventions.
		if column := extractColumnForUniqueViolation(sqlErr.ConstraintName); column != "" {
			userMessage = strings.ReplaceAll(userMessage, "identifier", strings.ToLower(humanizeText(column)))
		}
		return errs.NewConstraintError(userMessage, &errorCode, nil, cause)

	case NotNullViolation:
		fieldErrors := []errs.FieldError{
			{
				Field: strings.ToLower(sqlErr.ColumnName),
				Error: "is required",
			},
		}
		return errs.NewConstraintError(userMessage, &errorCode, fieldErrors, cause)

	case InvalidTextRepresentation, NumericValueOutOfRange:
		e := errs.NewInvalidError(userMessage, nil)
		e.Err = cause
		return e

	case ConnectionException, QueryCanceled:
		return errs.NewConnectionError(cause)

	default:
		return errs.NewInternalError(cause)
	}
}

// isConnectionError reports failures to reach the server or to finish in time.
func isConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr *net.OpError
	return errors.As(err, &netErr)
}

// generateErrorCode creates "<DOMAIN>_<ACTION>" codes, e.g.
// users + UniqueViolation => USER_ALREADY_EXISTS.
//
// DOMAIN is the table name, singularized and upper cased.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(singularize(tableName))

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, ExclusionViolation, InvalidTextRepresentation, NumericValueOutOfRange:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces an end-user-facing message.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", strings.ToLower(entityName))

	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", strings.ToLower(entityName))

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation, ExclusionViolation:
		if fieldName := humanizeText(sqlErr.ColumnName); fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case InvalidTextRepresentation, NumericValueOutOfRange:
		return "One or more values have an invalid format"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName infers what a row is called.
//
//  1. A foreign key column "guest_id" gives "Guest".
//  2. Otherwise the table name, singularized: "property_reviews" -> "Property Review".
//  3. Otherwise "Record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}

	if tableName != "" {
		return humanizeText(singularize(tableName))
	}

	return "Record"
}

// singularize is naive but covers this schema:
// users, properties, reservations, property_reviews.
func singularize(word string) string {
	lower := strings.ToLower(word)
	switch {
	case strings.HasSuffix(lower, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "s") && len(word) > 1:
		return word[:len(word)-1]
	}
	return word
}

// humanizeText converts snake_case into Title Case: "post_code" -> "Post Code".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation infers the column from a unique constraint
// name. Supported conventions:
//
//  1. "unique_<table>_<column>"      unique_users_email -> "email"
//  2. "<table>_<column>_(key|ukey)"  users_email_key    -> "email"
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := uniqueConstraintRe.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// extractColumnForForeignKey reads the column out of "<table>_<column>_fkey".
func extractColumnForForeignKey(tableName, constraintName string) string {
	if !strings.HasSuffix(constraintName, "_fkey") {
		return ""
	}

	column := strings.TrimSuffix(constraintName, "_fkey")
	if tableName != "" {
		column = strings.TrimPrefix(column, tableName+"_")
	}
	return column
}
