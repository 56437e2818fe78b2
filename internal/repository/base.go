// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ReadTimeout bounds single-row and list reads.
const ReadTimeout = 5 * time.Second

const pgUniqueViolation = "23505"

func withReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, ReadTimeout)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
// If constraint is not empty the violated constraint must contain it.
func isUniqueConstraintError(err error, constraint string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation &&
			(constraint == "" || strings.Contains(pgErr.ConstraintName, constraint))
	}

	// SQLite reports "UNIQUE constraint failed: profiles.username".
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "duplicate key") &&
		!strings.Contains(msg, "unique constraint") &&
		!strings.Contains(msg, pgUniqueViolation) {
		return false
	}
	return constraint == "" || strings.Contains(msg, strings.ToLower(constraint))
}
