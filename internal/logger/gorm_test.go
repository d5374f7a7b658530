package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Replace(zap.New(core))
	t.Cleanup(func() { Replace(zap.NewNop()) })
	return logs
}

func stmt() (string, int64) { return "SELECT 1", 1 }

func TestGormLoggerTrace(t *testing.T) {
	t.Run("logs_errors", func(t *testing.T) {
		logs := observe(t)
		l := Gorm(0)

		l.Trace(context.Background(), time.Now(), stmt, errors.New("boom"))

		entries := logs.FilterMessage("query failed").All()
		if len(entries) != 1 {
			t.Fatalf("expected 1 error entry, got %d", len(entries))
		}
		if entries[0].Level != zapcore.ErrorLevel {
			t.Errorf("expected error level, got %s", entries[0].Level)
		}
		if entries[0].LoggerName != "gorm" {
			t.Errorf("expected logger name gorm, got %q", entries[0].LoggerName)
		}
	})

	t.Run("ignores_record_not_found", func(t *testing.T) {
		logs := observe(t)
		l := Gorm(0)

		l.Trace(context.Background(), time.Now(), stmt, gorm.ErrRecordNotFound)

		if logs.Len() != 0 {
			t.Errorf("expected no entries, got %d", logs.Len())
		}
	})

	t.Run("warns_on_slow_query", func(t *testing.T) {
		logs := observe(t)
		l := Gorm(time.Millisecond)

		l.Trace(context.Background(), time.Now().Add(-time.Second), stmt, nil)

		if logs.FilterMessage("slow query").Len() != 1 {
			t.Errorf("expected a slow query warning, got %v", logs.All())
		}
	})

	t.Run("silent_mode", func(t *testing.T) {
		logs := observe(t)
		l := Gorm(time.Millisecond).LogMode(gormlogger.Silent)

		l.Trace(context.Background(), time.Now().Add(-time.Second), stmt, errors.New("boom"))

		if logs.Len() != 0 {
			t.Errorf("expected no entries in silent mode, got %d", logs.Len())
		}
	})

	t.Run("info_mode_logs_every_query", func(t *testing.T) {
		logs := observe(t)
		l := Gorm(0).LogMode(gormlogger.Info)

		l.Trace(context.Background(), time.Now(), stmt, nil)

		if logs.FilterMessage("query").Len() != 1 {
			t.Errorf("expected a debug query entry, got %v", logs.All())
		}
	})
}
