package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// Postgres or SQLite. When constraintName is provided, the helper also requires
// the constraint (or, on SQLite, the column list) to appear in the message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	unique := strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
	if !unique {
		return false
	}
	if constraintName != "" && strings.Contains(msg, "duplicate key value") {
		return strings.Contains(msg, constraintName)
	}
	return true
}

// IsCheckViolation reports whether err is a CHECK constraint failure, such as a
// stock column dropping below zero.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "violates check constraint") ||
		strings.Contains(msg, "CHECK constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23514")
}

// IsTransientConflict reports whether Postgres aborted the transaction because
// of a deadlock or a serialization failure. Rerunning the transaction is safe.
func IsTransientConflict(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateDeadlockDetected || pgErr.Code == sqlStateSerializationFailure
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE "+sqlStateDeadlockDetected) ||
		strings.Contains(msg, "SQLSTATE "+sqlStateSerializationFailure)
}
