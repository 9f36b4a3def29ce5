package ledger

import "github.com/aqasim81/schema-migrate/internal/database"

// TableName is the ledger table. It is never configurable.
const TableName = "schema_migrations"

// statements is the ledger SQL for one dialect.
type statements struct {
	create string
	list   string
	insert string
	delete string
}

var postgresStatements = statements{ //nolint:gochecknoglobals // immutable SQL table
	create: `CREATE TABLE IF NOT EXISTS schema_migrations (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	list:   `SELECT id, name, applied_at FROM schema_migrations ORDER BY id`,
	insert: `INSERT INTO schema_migrations (name) VALUES ($1)`,
	delete: `DELETE FROM schema_migrations WHERE name = $1`,
}

var sqliteStatements = statements{ //nolint:gochecknoglobals // immutable SQL table
	create: `CREATE TABLE IF NOT EXISTS schema_migrations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    applied_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	list:   `SELECT id, name, applied_at FROM schema_migrations ORDER BY id`,
	insert: `INSERT INTO schema_migrations (name) VALUES (?)`,
	delete: `DELETE FROM schema_migrations WHERE name = ?`,
}

func statementsFor(d database.Dialect) statements {
	if d == database.SQLite {
		return sqliteStatements
	}

	return postgresStatements
}
