package dberrors

import (
	"errors"

	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories care about.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	numericOverflow     = "22003"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraintName
}

// IsUniqueViolation reports whether err is any unique violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation, such as
// deleting a row that is still referenced.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// Classify maps a PostgreSQL error onto the application error kinds. Errors that
// are not constraint violations are returned unchanged.
func Classify(err error, message string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		return apperrors.NewCustomError(apperrors.ErrConflict, message).
			WithDetails(map[string]interface{}{"constraint": pgErr.ConstraintName})
	case foreignKeyViolation:
		return apperrors.NewCustomError(apperrors.ErrNotFound, message).
			WithDetails(map[string]interface{}{"constraint": pgErr.ConstraintName})
	case checkViolation, numericOverflow:
		return apperrors.NewCustomError(apperrors.ErrInvalidInput, message).
			WithDetails(map[string]interface{}{"constraint": pgErr.ConstraintName})
	default:
		return err
	}
}
