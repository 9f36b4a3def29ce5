package runner

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/aqasim81/schema-migrate/internal/database"
)

// execInTransaction runs fn inside a transaction on the runner's connection.
// On success the transaction is committed; on error it is rolled back and a
// failed rollback is reported alongside the original error.
func (r *Runner) execInTransaction(ctx context.Context, fn func(tx database.Tx) error) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", ErrExecution, err)
	}

	if err := fn(tx); err != nil {
		// The run's context may already be cancelled; the rollback must still be sent.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			err = multierr.Append(err, fmt.Errorf("rolling back: %w", rbErr))
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", ErrExecution, err)
	}

	return nil
}
