package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
)

// TxBeginner starts transactions. *sql.DB satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TxFn is a unit of work executed inside a transaction.
// Returning nil commits; returning an error rolls back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes fn inside a transaction opened on db.
// A panic inside fn rolls back and is re-raised.
func RunInTransaction(ctx context.Context, db TxBeginner, fn TxFn) (err error) {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", rbErr.Error()),
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		log.Debug("rolled back transaction", slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	return nil
}
