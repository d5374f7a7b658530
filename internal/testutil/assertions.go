package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "counselor/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertKind checks that err is an *AppError of the given kind.
func AssertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperrors.KindOf(err); got != kind {
		t.Errorf("expected %s error, got %s: %v", kind, got, err)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertCount fails the test unless table holds exactly want rows.
func AssertCount(t *testing.T, db *gorm.DB, table string, want int64) {
	t.Helper()

	var got int64
	if err := db.Table(table).Count(&got).Error; err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	if got != want {
		t.Errorf("expected %d rows in %s, got %d", want, table, got)
	}
}
