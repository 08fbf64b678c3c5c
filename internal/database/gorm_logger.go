// internal/database/gorm_logger.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

type gormLogrusLogger struct {
	entry                      *logrus.Entry
	level                      logger.LogLevel
	slowThreshold              time.Duration
	ignoreRecordNotFoundErrors bool
}

func newGormLogger(base *logrus.Logger, level string) logger.Interface {
	return &gormLogrusLogger{
		entry:                      base.WithField("component", "gorm"),
		level:                      parseGormLevel(level),
		slowThreshold:              defaultSlowThreshold,
		ignoreRecordNotFoundErrors: true,
	}
}

func parseGormLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func (l *gormLogrusLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level
	return &cloned
}

func (l *gormLogrusLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level < logger.Info {
		return
	}
	l.entry.WithContext(ctx).Info(fmt.Sprintf(msg, args...))
}

func (l *gormLogrusLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level < logger.Warn {
		return
	}
	l.entry.WithContext(ctx).Warn(fmt.Sprintf(msg, args...))
}

func (l *gormLogrusLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level < logger.Error {
		return
	}
	l.entry.WithContext(ctx).Error(fmt.Sprintf(msg, args...))
}

func (l *gormLogrusLogger) Trace(ctx context.Context, begin time.Time, sqlAndRowsFn func() (string, int64), err error) {
	if l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case l.shouldLogError(err):
		l.queryEntry(ctx, sqlAndRowsFn, elapsed).WithError(err).Error("GORM query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		l.queryEntry(ctx, sqlAndRowsFn, elapsed).
			WithField("slow_threshold", l.slowThreshold).
			Warn("GORM slow query")
	case l.level >= logger.Info:
		l.queryEntry(ctx, sqlAndRowsFn, elapsed).Debug("GORM query")
	}
}

func (l *gormLogrusLogger) queryEntry(ctx context.Context, sqlAndRowsFn func() (string, int64), elapsed time.Duration) *logrus.Entry {
	sql, rows := sqlAndRowsFn()
	return l.entry.WithContext(ctx).WithFields(logrus.Fields{
		"elapsed": elapsed,
		"rows":    rows,
		"sql":     sql,
	})
}

func (l *gormLogrusLogger) shouldLogError(err error) bool {
	if err == nil || l.level < logger.Error {
		return false
	}
	if l.ignoreRecordNotFoundErrors && errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	return true
}
