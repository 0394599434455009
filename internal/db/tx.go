package db

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/setpoint-app/setpoint/internal/fault"
	"github.com/setpoint-app/setpoint/internal/metrics"
)

// maxTxAttempts bounds conflict retries before the operation fails with
// fault.Conflict. Callers can retry the whole operation after that.
const maxTxAttempts = 5

// RunInTx executes fn inside one transaction: every read in the body sees one
// snapshot and every write commits together or not at all. When the database
// reports a write conflict (busy/locked) the whole body is re-run, so fn must
// be free of side effects outside the transaction. Any other error from fn
// aborts with a rollback and zero writes.
func RunInTx(ctx context.Context, database *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	var last error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err := runOnce(ctx, database, fn)
		if err == nil {
			metrics.TxCommits.Inc()
			return nil
		}
		if !Retryable(err) {
			return err
		}

		last = err
		metrics.TxRetries.Inc()
		select {
		case <-ctx.Done():
			return fault.Wrap(fault.StoreUnavailable, "transaction interrupted", ctx.Err())
		case <-time.After(time.Duration(attempt) * 5 * time.Millisecond):
		}
	}

	metrics.TxExhausted.Inc()
	return fault.Wrap(fault.Conflict, "transaction retries exhausted", last)
}

func runOnce(ctx context.Context, database *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := database.BeginTxx(ctx, nil)
	if err != nil {
		return fault.Wrap(fault.StoreUnavailable, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Retryable reports whether err is a transient sqlite contention error worth
// re-running the transaction body for.
func Retryable(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}
