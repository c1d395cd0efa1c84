package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	foreignKeyViolation       = "23503"
	invalidTextRepresentation = "22P02"
)

// withTx runs fn in a transaction, rolling back when fn or the commit fails.
func withTx(ctx context.Context, db *sqlx.DB, label string, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", label, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", label, err)
	}
	return nil
}

// isMissingReference reports a write that referenced a missing client, session or
// category, or named one with an id that is not a UUID.
func isMissingReference(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && (pqErr.Code == foreignKeyViolation || pqErr.Code == invalidTextRepresentation)
}

// isMalformedID reports a lookup by an id Postgres could not parse as a UUID.
func isMalformedID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}
