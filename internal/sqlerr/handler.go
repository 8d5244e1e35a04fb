package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/invoices/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// constraintSuffixes are the suffixes Postgres gives default constraint
// names, e.g. invoices_customer_id_fkey.
var constraintSuffixes = []string{"_fkey", "_key", "_ukey", "_check", "_not_null"}

// ErrCode reports the Code for err, looking first for an already converted
// *Error and then for a raw *pgconn.PgError. Anything else is Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError converts a raw Postgres error into *Error.
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

// errorCode builds a machine code of the form <ENTITY>_<ACTION>, e.g.
// INVOICE_INVALID or, for a missing customer_id reference,
// CUSTOMER_NOT_FOUND.
func errorCode(sqlErr *Error, column string) string {
	entity := singular(sqlErr.TableName)
	if sqlErr.Code == ForeignKeyViolation {
		if ref, ok := strings.CutSuffix(column, "_id"); ok {
			entity = ref
		}
	}
	if entity == "" {
		entity = "record"
	}

	action := "ERROR"
	switch sqlErr.Code {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidText:
		action = "INVALID"
	}

	return strings.ToUpper(entity) + "_" + action
}

func userMessage(sqlErr *Error, column string) string {
	field := humanizeText(column)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		entity := singular(sqlErr.TableName)
		if ref, ok := strings.CutSuffix(column, "_id"); ok {
			entity = ref
		}
		if entity == "" {
			entity = "record"
		}
		return fmt.Sprintf("The referenced %s does not exist", humanizeText(entity))

	case UniqueViolation:
		if field == "" {
			field = "identifier"
		}
		return fmt.Sprintf("A %s with this %s already exists", entityName(sqlErr.TableName), field)

	case NotNullViolation:
		if field == "" {
			field = "field"
		}
		return fmt.Sprintf("The %s is required", field)

	case CheckViolation:
		if field != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", field)
		}
		return "One or more values do not meet required conditions"

	case InvalidText:
		return "One or more values have an invalid format"

	default:
		return "An error occurred while processing your request"
	}
}

func singular(table string) string {
	table = strings.ToLower(table)
	if len(table) > 1 {
		return strings.TrimSuffix(table, "s")
	}
	return table
}

func entityName(table string) string {
	if entity := singular(table); entity != "" {
		return humanizeText(entity)
	}
	return "record"
}

// humanizeText turns "customer_id" into "Customer Id".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// columnOf returns the offending column. Postgres leaves ColumnName empty
// for unique, foreign key and check violations, so it is read out of the
// default constraint name <table>_<column>_<suffix> instead.
func columnOf(sqlErr *Error) string {
	if sqlErr.ColumnName != "" {
		return strings.ToLower(sqlErr.ColumnName)
	}

	name, ok := strings.CutPrefix(sqlErr.ConstraintName, sqlErr.TableName+"_")
	if !ok || sqlErr.TableName == "" {
		return ""
	}

	for _, suffix := range constraintSuffixes {
		if column, ok := strings.CutSuffix(name, suffix); ok {
			return column
		}
	}

	return ""
}

// HandleError converts a low-level database error into an *errs.HTTPError.
//
//   - *errs.HTTPError is returned unchanged
//   - *pgconn.PgError becomes a 400 for constraint problems, 500 otherwise
//   - pgx.ErrNoRows / sql.ErrNoRows become a 404
//   - anything else becomes a generic 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		column := columnOf(sqlErr)
		code := errorCode(sqlErr, column)
		message := userMessage(sqlErr, column)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(message, false, &code, nil, nil)

		case NotNullViolation:
			fieldErrors := errs.FieldErrors{}
			fieldErrors.Add(column, "is required")
			return errs.NewBadRequestError(message, true, &code, fieldErrors, nil)

		case UniqueViolation, CheckViolation, InvalidText:
			return errs.NewBadRequestError(message, true, &code, nil, nil)

		default:
			return errs.NewInternalServerError()
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
