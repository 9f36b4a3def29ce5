package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-migrate/internal/database"
)

func openMemory(t *testing.T) database.Conn {
	t.Helper()

	conn, err := database.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, conn.Close(context.Background()))
	})

	return conn
}

func countRows(t *testing.T, q database.Querier, table string) int {
	t.Helper()

	rows, err := q.Query(context.Background(), "SELECT COUNT(*) FROM "+table)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var n int
	require.NoError(t, rows.Scan(&n))
	require.NoError(t, rows.Err())

	return n
}

func TestSQLite_dialect(t *testing.T) {
	t.Parallel()

	conn := openMemory(t)

	assert.Equal(t, database.SQLite, conn.Dialect())
}

func TestSQLite_execMultipleStatements(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn := openMemory(t)

	_, err := conn.Exec(ctx, `CREATE TABLE a (id INTEGER PRIMARY KEY);
CREATE TABLE b (id INTEGER PRIMARY KEY);
INSERT INTO a (id) VALUES (1);`)
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, conn, "a"))
	assert.Equal(t, 0, countRows(t, conn, "b"))
}

func TestSQLite_execReportsRowsAffected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn := openMemory(t)

	_, err := conn.Exec(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	_, err = conn.Exec(ctx, "INSERT INTO t (id) VALUES (1), (2), (3)")
	require.NoError(t, err)

	n, err := conn.Exec(ctx, "DELETE FROM t WHERE id > ?", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSQLite_rollbackDiscardsDDL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn := openMemory(t)

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.Exec(ctx, "CREATE TABLE doomed (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	_, err = conn.Exec(ctx, "SELECT * FROM doomed")
	require.Error(t, err)
}

func TestSQLite_commitPersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn := openMemory(t)

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.Exec(ctx, "CREATE TABLE kept (id INTEGER); INSERT INTO kept (id) VALUES (7);")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, 1, countRows(t, conn, "kept"))
}

func TestSQLite_closeIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	conn, err := database.Open(ctx, "sqlite::memory:")
	require.NoError(t, err)

	require.NoError(t, conn.Close(ctx))
	require.NoError(t, conn.Close(ctx))

	_, err = conn.Exec(ctx, "SELECT 1")
	require.ErrorIs(t, err, database.ErrConnClosed)

	_, err = conn.Begin(ctx)
	require.ErrorIs(t, err, database.ErrConnClosed)
}
