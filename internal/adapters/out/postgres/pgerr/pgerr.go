// Package pgerr classifies PostgreSQL constraint violations returned through
// GORM so repositories can map them onto the errs taxonomy.
package pgerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CodeForeignKeyViolation = "23503"
	CodeUniqueViolation     = "23505"
	CodeCheckViolation      = "23514"
)

// Violation describes a failed constraint.
type Violation struct {
	Code       string
	Constraint string
	Detail     string
}

// AsViolation extracts the violated constraint from err, if any.
func AsViolation(err error) (Violation, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return Violation{}, false
	}
	switch pgErr.Code {
	case CodeForeignKeyViolation, CodeUniqueViolation, CodeCheckViolation:
		return Violation{Code: pgErr.Code, Constraint: pgErr.ConstraintName, Detail: pgErr.Detail}, true
	default:
		return Violation{}, false
	}
}
