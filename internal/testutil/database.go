// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"counselor/internal/logger"
	"counselor/internal/models"
)

// dbSeq names each in-memory database so tests never share state.
var dbSeq atomic.Int64

// DSN returns a fresh in-memory sqlite DSN with foreign keys enforced.
func DSN() string {
	return fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
}

// SetupTestDB creates an isolated in-memory SQLite database with all models
// migrated and foreign keys enforced.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	logger.Init("test")

	db, err := gorm.Open(sqlite.Open(DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Gorm(0),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps the named in-memory database alive and
	// serializes statements the way one sqlite writer would.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
