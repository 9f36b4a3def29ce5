package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/aqasim81/schema-migrate/internal/config"
	"github.com/aqasim81/schema-migrate/internal/database"
	"github.com/aqasim81/schema-migrate/internal/ledger"
	"github.com/aqasim81/schema-migrate/internal/migration"
	"github.com/aqasim81/schema-migrate/internal/runner"
)

// errDatabaseURLRequired is returned when no database URL is configured.
var errDatabaseURLRequired = errors.New( //nolint:gochecknoglobals // sentinel error
	"database URL is required (set --database-url, MIGRATE_DATABASE_URL, or database_url in config)",
)

// openRunner connects to the configured database and wires a Runner to it.
// The caller closes the returned Conn.
func openRunner(ctx context.Context, cfg *config.Config, opts ...runner.Option) (*runner.Runner, database.Conn, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errDatabaseURLRequired
	}

	policy, err := runner.ParseOutOfOrderPolicy(cfg.OutOfOrder)
	if err != nil {
		return nil, nil, err
	}

	log := logger()
	log.Debug("Connecting to database", zap.String("url", config.RedactURL(cfg.DatabaseURL)))

	conn, err := database.Open(ctx, cfg.DatabaseURL, database.WithMaxConns(cfg.MaxConns))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	log.Debug("Connected", zap.Stringer("dialect", conn.Dialect()))

	base := []runner.Option{
		runner.WithLogger(log),
		runner.WithLockTimeout(cfg.LockTimeout),
		runner.WithStatementTimeout(cfg.StatementTimeout),
		runner.WithOutOfOrder(policy),
	}

	r := runner.New(conn, ledger.New(conn, conn.Dialect()), migration.NewDirSource(cfg.MigrationsDir),
		append(base, opts...)...)

	return r, conn, nil
}

// closeConn closes conn even when ctx has been cancelled.
func closeConn(ctx context.Context, conn database.Conn) {
	if err := conn.Close(context.WithoutCancel(ctx)); err != nil {
		logger().Warn("Closing database connection", zap.Error(err))
	}
}

// progressPrinter writes one line per migration to out.
func progressPrinter(out io.Writer) func(runner.ProgressEvent) {
	return func(event runner.ProgressEvent) {
		verb, would := "Applying", "apply"
		if event.Direction == migration.Down {
			verb, would = "Reverting", "revert"
		}

		switch event.Status {
		case runner.StatusStarting:
			fmt.Fprintf(out, "  %s %s ... ", verb, event.ID)
		case runner.StatusCompleted:
			fmt.Fprintf(out, "done (%s)\n", event.Duration.Truncate(time.Millisecond))
		case runner.StatusSkipped:
			fmt.Fprintf(out, "  Would %s %s\n", would, event.ID)
		case runner.StatusFailed:
			fmt.Fprintf(out, "FAILED\n")
			fmt.Fprintf(out, "    Error: %v\n", event.Error)
		}
	}
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}

	return ctx
}
