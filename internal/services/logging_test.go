package services

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"counselor/internal/logger"
	"counselor/internal/testutil"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(zap.NewNop()) })
	return logs
}

func TestCascadeIsLogged(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	h := testutil.CreateTestHolding(t, db)

	logs := observeLogs(t)
	_, err := NewClientService(db).DeleteClient(ctx, h.Client.ID)
	testutil.AssertNoError(t, err)

	entries := logs.FilterMessage("client deleted").All()
	if len(entries) != 1 {
		t.Fatalf("expected one cascade log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["client_id"] != h.Client.ID {
		t.Errorf("expected client_id %s, got %v", h.Client.ID, fields["client_id"])
	}
	if fields["securities_deleted"] != int64(1) {
		t.Errorf("expected securities_deleted 1, got %v", fields["securities_deleted"])
	}
}

func TestRejectionIsLogged(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	h := testutil.CreateTestHolding(t, db)

	logs := observeLogs(t)
	err := NewSecurityTypeService(db).DeleteSecurityType(ctx, h.Type.ID)
	testutil.AssertAppError(t, err, "SECURITY_TYPE_IN_USE")

	entries := logs.FilterMessage("security type delete rejected").All()
	if len(entries) != 1 {
		t.Fatalf("expected one rejection log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %s", entries[0].Level)
	}
}
