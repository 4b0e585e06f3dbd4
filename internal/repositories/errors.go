package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"returns-backend/internal/store"
)

// wrapErr maps driver errors onto the store error kinds so callers can
// classify failures with errors.Is. The original message is preserved
// through wrapping.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501": // insufficient_privilege
			return fmt.Errorf("%s: %w: %s", op, store.ErrPermissionDenied, pgErr.Message)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%s: %w: %s", op, store.ErrAborted, pgErr.Message)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	// Anything that is not a server-reported error is a transport
	// problem: connection refused, pool closed, context timeout.
	return fmt.Errorf("%s: %w: %v", op, store.ErrUnavailable, err)
}

// isSerializationFailure reports whether the transaction should be
// retried.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
