package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aqasim81/schema-migrate/internal/database"
	"github.com/aqasim81/schema-migrate/internal/parser"
)

// setTimeouts applies the configured lock_timeout and statement_timeout to tx.
// SET LOCAL scopes them to the migration's transaction. SQLite has no equivalent.
func (r *Runner) setTimeouts(ctx context.Context, tx database.Tx) error {
	if r.conn.Dialect() != database.Postgres {
		return nil
	}

	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, timeoutSQL("lock_timeout", r.lockTimeout)); err != nil {
			return fmt.Errorf("%w: setting lock_timeout: %w", ErrExecution, err)
		}
	}

	if r.statementTimeout > 0 {
		if _, err := tx.Exec(ctx, timeoutSQL("statement_timeout", r.statementTimeout)); err != nil {
			return fmt.Errorf("%w: setting statement_timeout: %w", ErrExecution, err)
		}
	}

	return nil
}

func timeoutSQL(setting string, d time.Duration) string {
	return fmt.Sprintf("SET LOCAL %s = '%dms'", setting, d.Milliseconds())
}

// checkTransactional rejects PostgreSQL blocks that contain statements which
// cannot run inside a transaction. Blocks pg_query cannot parse are let
// through so the database reports the real error.
func (r *Runner) checkTransactional(block string) error {
	if r.conn.Dialect() != database.Postgres {
		return nil
	}

	found, err := parser.NonTransactional(block)
	if err != nil {
		if errors.Is(err, parser.ErrSyntax) {
			return nil
		}

		return err
	}

	if len(found) > 0 {
		return fmt.Errorf("%w: %s", ErrNonTransactional, strings.Join(found, "; "))
	}

	return nil
}
