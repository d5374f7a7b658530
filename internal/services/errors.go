package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "counselor/internal/errors"
	"counselor/internal/uuid"
)

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}

// isForeignKeyError checks if a GORM error is a foreign key violation.
func isForeignKeyError(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") || // SQLite
		strings.Contains(msg, "violates foreign key constraint") // PostgreSQL
}

// isNotNullError checks if a GORM error is a NOT NULL violation.
func isNotNullError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "NOT NULL constraint failed") || // SQLite
		strings.Contains(msg, "violates not-null constraint") // PostgreSQL
}

// writeError maps a failed insert or update to the store taxonomy. dup and
// missingRef are the codes for a unique and a foreign key violation of the
// statement's table.
func writeError(err error, dup, missingRef *apperrors.AppError) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case isUniqueConstraintError(err):
		return apperrors.Wrap(dup, err)
	case isForeignKeyError(err):
		return apperrors.Wrap(missingRef, err)
	case isNotNullError(err):
		return apperrors.Wrap(apperrors.ErrRequiredField, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// readError maps a failed lookup; record-not-found becomes notFound.
func readError(err error, notFound *apperrors.AppError) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// parseID returns id in canonical form. A malformed id is reported as
// notFound without reaching the database.
func parseID(id string, notFound *apperrors.AppError) (string, error) {
	canonical, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", notFound
	}
	return canonical, nil
}

// canonicalRef returns a reference id in canonical form. Malformed values
// are returned trimmed; validation and exists report them.
func canonicalRef(id string) string {
	id = strings.TrimSpace(id)
	if canonical, err := uuid.Parse(id); err == nil {
		return canonical
	}
	return id
}

// exists reports whether a row of model with the given id is present.
func exists(tx *gorm.DB, model interface{}, id string) (bool, error) {
	canonical, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}
	var n int64
	if err := tx.Model(model).Where("id = ?", canonical).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// normalizeEmail trims and lower-cases an email so uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// timestamp returns at in UTC, or the current time when at is zero.
func timestamp(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now().UTC()
	}
	return at.UTC()
}
