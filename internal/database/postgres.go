package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a pgx connection pool for the given database URL.
// It parses the connection string, caps the pool at maxConns,
// and pings the database to verify connectivity.
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return pool, nil
}

// OpenPostgres creates a pool and acquires the connection the run will hold.
// Closing the returned Conn also closes the pool.
func OpenPostgres(ctx context.Context, databaseURL string, maxConns int32) (Conn, error) {
	pool, err := NewPool(ctx, databaseURL, maxConns)
	if err != nil {
		return nil, err
	}

	c, err := acquire(ctx, pool)
	if err != nil {
		pool.Close()

		return nil, err
	}

	c.ownsPool = true

	return c, nil
}

// FromPool acquires a dedicated connection from an existing pool.
// Closing the returned Conn releases the connection but leaves the pool open.
func FromPool(ctx context.Context, pool *pgxpool.Pool) (Conn, error) {
	return acquire(ctx, pool)
}

func acquire(ctx context.Context, pool *pgxpool.Pool) (*pgConn, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquiring connection: %w", ErrConnectionFailed, err)
	}

	return &pgConn{pool: pool, conn: conn}, nil
}

// pgConn holds one pooled connection for the lifetime of a run.
type pgConn struct {
	pool     *pgxpool.Pool
	conn     *pgxpool.Conn
	ownsPool bool
}

func (c *pgConn) Dialect() Dialect { return Postgres }

func (c *pgConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if c.conn == nil {
		return 0, ErrConnClosed
	}

	tag, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (c *pgConn) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if c.conn == nil {
		return nil, ErrConnClosed
	}

	return c.conn.Query(ctx, sql, args...)
}

func (c *pgConn) Begin(ctx context.Context) (Tx, error) {
	if c.conn == nil {
		return nil, ErrConnClosed
	}

	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return pgTx{tx: tx}, nil
}

// Close releases the connection back to the pool. Subsequent calls are no-ops.
func (c *pgConn) Close(_ context.Context) error {
	if c == nil || c.conn == nil {
		return nil
	}

	c.conn.Release()
	c.conn = nil

	if c.ownsPool {
		c.pool.Close()
	}

	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (t pgTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return t.tx.Query(ctx, sql, args...)
}

func (t pgTx) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

func (t pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
