package worklist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/logging"
)

// slowQueryThreshold marks queries worth a warning.
const slowQueryThreshold = 200 * time.Millisecond

// gormLogger routes gorm's logging through the application logger.
type gormLogger struct {
	level gormlogger.LogLevel
}

// newGormLogger silences SQL tracing unless debug logging is on.
func newGormLogger() gormlogger.Interface {
	level := gormlogger.Silent
	if os.Getenv(constants.DebugEnvVar) == "1" {
		level = gormlogger.Info
	}
	return &gormLogger{level: level}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		logging.Logger.Error("query failed", "sql", sql, "rows", rows, "error", err)
	case elapsed > slowQueryThreshold:
		logging.Logger.Warn("slow query", "sql", sql, "rows", rows, "elapsed", elapsed.String())
	default:
		logging.Logger.Debug("query", "sql", sql, "rows", rows, "elapsed", elapsed.String())
	}
}
