package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "applications_application_number_key"})

	assert.True(t, IsDuplicateConstraintError(err, "applications_application_number_key"))
	assert.False(t, IsDuplicateConstraintError(err, "users_email_key"))
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsDuplicateConstraintError(&pgconn.PgError{Code: "23503", ConstraintName: "applications_application_number_key"},
		"applications_application_number_key"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"unique", "23505", apperrors.ErrConflict},
		{"foreign key", "23503", apperrors.ErrNotFound},
		{"check", "23514", apperrors.ErrInvalidInput},
		{"numeric overflow", "22003", apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(&pgconn.PgError{Code: tt.code}, "could not store row")
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, "could not store row", err.Error())
		})
	}

	plain := errors.New("connection reset")
	assert.Same(t, plain, Classify(plain, "ignored"))

	deadlock := &pgconn.PgError{Code: "40P01"}
	assert.Equal(t, error(deadlock), Classify(deadlock, "ignored"))
}
