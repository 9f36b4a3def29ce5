package database

import (
	"context"
	"fmt"
	"strings"
)

// Dialect identifies the SQL flavour spoken by a connection.
type Dialect int

const (
	// Postgres is PostgreSQL, driven through pgx.
	Postgres Dialect = iota
	// SQLite is SQLite, driven through modernc.org/sqlite.
	SQLite
)

// String returns the lowercase dialect name.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Rows is the subset of a result set read by the ledger.
// pgx.Rows satisfies it directly.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Querier executes statements. Both Conn and Tx implement it.
type Querier interface {
	// Exec runs sql and returns the number of rows affected.
	// Without args, sql may contain several statements.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Tx is an open transaction on a Conn.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is one dedicated database connection held for a whole migration run.
type Conn interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
	Dialect() Dialect
	// Close returns the connection and releases everything Open created.
	// Safe to call more than once.
	Close(ctx context.Context) error
}

const defaultMaxConns = 2

type openOptions struct {
	maxConns int32
}

// Option configures Open.
type Option func(*openOptions)

// WithMaxConns caps the PostgreSQL pool reserved for migration work.
func WithMaxConns(n int32) Option {
	return func(o *openOptions) {
		if n > 0 {
			o.maxConns = n
		}
	}
}

// Open connects to databaseURL and returns a dedicated connection.
// sqlite://, sqlite: and file: URLs open SQLite; anything else is handed to pgx.
func Open(ctx context.Context, databaseURL string, opts ...Option) (Conn, error) {
	o := openOptions{maxConns: defaultMaxConns}
	for _, opt := range opts {
		opt(&o)
	}

	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite {
		return OpenSQLite(ctx, dsn)
	}

	return OpenPostgres(ctx, dsn, o.maxConns)
}

// ParseURL picks the dialect for databaseURL and returns the DSN to hand to its driver.
func ParseURL(databaseURL string) (Dialect, string, error) {
	raw := strings.TrimSpace(databaseURL)
	if raw == "" {
		return Postgres, "", fmt.Errorf("%w: empty URL", ErrInvalidDatabaseURL)
	}

	switch {
	case strings.HasPrefix(raw, "sqlite://"):
		return sqliteDSN(strings.TrimPrefix(raw, "sqlite://"))
	case strings.HasPrefix(raw, "sqlite:"):
		return sqliteDSN(strings.TrimPrefix(raw, "sqlite:"))
	case strings.HasPrefix(raw, "file:"):
		return SQLite, raw, nil
	default:
		return Postgres, raw, nil
	}
}

func sqliteDSN(dsn string) (Dialect, string, error) {
	if dsn == "" {
		return SQLite, "", fmt.Errorf("%w: sqlite URL has no path", ErrInvalidDatabaseURL)
	}

	return SQLite, dsn, nil
}
