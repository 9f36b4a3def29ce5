//go:build integration

package integration

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aqasim81/schema-migrate/internal/database"
	"github.com/aqasim81/schema-migrate/internal/migration"
	"github.com/aqasim81/schema-migrate/internal/parser"
)

const (
	postgresImage = "postgres:16-alpine"
	testDB        = "migrate_test"
	testUser      = "migrate"
	testPassword  = "migrate"
)

// SetupPostgresDSN starts a PostgreSQL 16 container and returns its URL.
// The container is terminated when the test completes.
func SetupPostgresDSN(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       testDB,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return "postgres://" + testUser + ":" + testPassword + "@" + host + ":" + port.Port() + "/" + testDB + "?sslmode=disable"
}

// SetupPostgres starts a container and returns a pool connected to it.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := database.NewPool(context.Background(), SetupPostgresDSN(t), 4)
	require.NoError(t, err)

	t.Cleanup(pool.Close)

	return pool
}

// OpenConn returns a dedicated Conn from pool, released on cleanup.
func OpenConn(t *testing.T, pool *pgxpool.Pool) database.Conn {
	t.Helper()

	conn, err := database.FromPool(context.Background(), pool)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close(context.Background())
	})

	return conn
}

// migrationFile renders a migration file body with both markers.
func migrationFile(up, down string) *fstest.MapFile {
	return &fstest.MapFile{
		Data: []byte(parser.UpMarker + "\n" + up + "\n\n" + parser.DownMarker + "\n" + down + "\n"),
	}
}

// NewMemSource returns a Source over in-memory files.
func NewMemSource(files fstest.MapFS) *migration.Source {
	return migration.NewSource(files, "migrations")
}

// TableExists reports whether a table named name exists in the public schema.
func TableExists(t *testing.T, pool *pgxpool.Pool, name string) bool {
	t.Helper()

	var exists bool

	err := pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_name = $1)`, name).Scan(&exists)
	require.NoError(t, err)

	return exists
}
