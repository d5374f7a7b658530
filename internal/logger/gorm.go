package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm's SQL logging through zap.
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

var _ gormlogger.Interface = (*GormLogger)(nil)

// Gorm returns a gorm logger at Warn level. Queries slower than
// slowThreshold are logged as warnings; zero disables slow-query logging.
func Gorm(slowThreshold time.Duration) *GormLogger {
	return &GormLogger{level: gormlogger.Warn, slowThreshold: slowThreshold}
}

// LogMode returns a copy of the logger at the given level.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.sugar().Infof(msg, args...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.sugar().Warnf(msg, args...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.sugar().Errorf(msg, args...)
	}
}

// Trace logs a finished statement. Record-not-found is an expected outcome
// for lookups and is never logged as an error.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.sugar().Errorw("query failed",
			"error", err,
			"elapsed_ms", elapsed.Milliseconds(),
			"rows", rows,
			"sql", sql,
		)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.sugar().Warnw("slow query",
			"threshold", fmt.Sprint(l.slowThreshold),
			"elapsed_ms", elapsed.Milliseconds(),
			"rows", rows,
			"sql", sql,
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.sugar().Debugw("query",
			"elapsed_ms", elapsed.Milliseconds(),
			"rows", rows,
			"sql", sql,
		)
	}
}

func (l *GormLogger) sugar() *zap.SugaredLogger {
	return Get().Named("gorm").WithOptions(zap.AddCallerSkip(3))
}
