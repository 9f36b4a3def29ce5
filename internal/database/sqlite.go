package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/multierr"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// OpenSQLite opens dsn with modernc.org/sqlite and pins a single connection,
// so ":memory:" databases live exactly as long as the returned Conn.
func OpenSQLite(ctx context.Context, dsn string) (Conn, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("%w: %w", ErrConnectionFailed, err), db.Close())
	}

	if err := conn.PingContext(ctx); err != nil {
		return nil, multierr.Combine(fmt.Errorf("%w: %w", ErrConnectionFailed, err), conn.Close(), db.Close())
	}

	return &sqliteConn{db: db, conn: conn}, nil
}

type sqliteConn struct {
	db   *sql.DB
	conn *sql.Conn
}

func (c *sqliteConn) Dialect() Dialect { return SQLite }

func (c *sqliteConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if c.conn == nil {
		return 0, ErrConnClosed
	}

	return execResult(c.conn.ExecContext(ctx, query, args...))
}

func (c *sqliteConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	if c.conn == nil {
		return nil, ErrConnClosed
	}

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return sqlRows{rows}, nil
}

func (c *sqliteConn) Begin(ctx context.Context) (Tx, error) {
	if c.conn == nil {
		return nil, ErrConnClosed
	}

	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return sqliteTx{tx: tx}, nil
}

func (c *sqliteConn) Close(_ context.Context) error {
	if c == nil || c.conn == nil {
		return nil
	}

	err := multierr.Append(c.conn.Close(), c.db.Close())
	c.conn = nil

	return err
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t sqliteTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execResult(t.tx.ExecContext(ctx, query, args...))
}

func (t sqliteTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return sqlRows{rows}, nil
}

func (t sqliteTx) Commit(_ context.Context) error { return t.tx.Commit() }

func (t sqliteTx) Rollback(_ context.Context) error { return t.tx.Rollback() }

// sqlRows adapts *sql.Rows, whose Close returns an error, to Rows.
type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() { _ = r.Rows.Close() }

func execResult(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}

	return n, nil
}
