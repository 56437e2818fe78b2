package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// GormLogger sends GORM output to slog. Record-not-found is expected on
// first sign-in and event lookups, so it is never logged as an error.
type GormLogger struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

// NewGormLogger returns a GormLogger at warn level.
func NewGormLogger(l *slog.Logger) *GormLogger {
	return &GormLogger{log: l, level: logger.Warn, slow: slowQueryThreshold}
}

// LogMode returns a copy of the logger at level.
func (g *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	g.printf(ctx, logger.Info, slog.LevelInfo, msg, data)
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	g.printf(ctx, logger.Warn, slog.LevelWarn, msg, data)
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	g.printf(ctx, logger.Error, slog.LevelError, msg, data)
}

func (g *GormLogger) printf(ctx context.Context, min logger.LogLevel, lvl slog.Level, msg string, data []interface{}) {
	if g.level >= min {
		g.log.Log(ctx, lvl, fmt.Sprintf(msg, data...))
	}
}

// Trace logs failed and slow statements, and every statement at info level.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	var (
		lvl slog.Level
		msg string
	)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		lvl, msg = slog.LevelError, "GORM query error"
	case g.slow > 0 && elapsed > g.slow && g.level >= logger.Warn:
		lvl, msg = slog.LevelWarn, "GORM slow query"
	case g.level >= logger.Info:
		lvl, msg = slog.LevelInfo, "GORM query"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	g.log.LogAttrs(ctx, lvl, msg, attrs...)
}
