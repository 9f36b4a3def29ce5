package parser_test

import (
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-migrate/internal/parser"
)

func TestParseStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sql       string
		wantErr   bool
		wantStmts int
		checkNode func(t *testing.T, result *parser.ParseResult)
	}{
		{
			name:      "valid CREATE TABLE returns one statement",
			sql:       "CREATE TABLE users (id SERIAL PRIMARY KEY, name TEXT NOT NULL);",
			wantStmts: 1,
			checkNode: func(t *testing.T, result *parser.ParseResult) {
				t.Helper()
				_, ok := result.Stmts[0].Stmt.Node.(*pg_query.Node_CreateStmt)
				assert.True(t, ok, "expected CreateStmt node")
			},
		},
		{
			name:      "multi-statement SQL returns correct count",
			sql:       "CREATE TABLE a (id INT); CREATE TABLE b (id INT); CREATE TABLE c (id INT);",
			wantStmts: 3,
		},
		{
			name:      "CREATE INDEX CONCURRENTLY parses correctly",
			sql:       "CREATE INDEX CONCURRENTLY idx_name ON users (email);",
			wantStmts: 1,
			checkNode: func(t *testing.T, result *parser.ParseResult) {
				t.Helper()
				node, ok := result.Stmts[0].Stmt.Node.(*pg_query.Node_IndexStmt)
				require.True(t, ok, "expected IndexStmt node")
				assert.True(t, node.IndexStmt.Concurrent, "expected Concurrent to be true")
			},
		},
		{
			name:    "invalid SQL returns error",
			sql:     "SELECT * FROM WHERE;",
			wantErr: true,
		},
		{
			name:      "empty string returns zero statements",
			sql:       "",
			wantStmts: 0,
		},
		{
			name:      "whitespace-only returns zero statements",
			sql:       "   \n\t  ",
			wantStmts: 0,
			checkNode: func(t *testing.T, result *parser.ParseResult) {
				t.Helper()
				assert.Equal(t, "   \n\t  ", result.SQL, "original SQL preserved")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := parser.ParseStatements(tt.sql)

			if tt.wantErr {
				require.ErrorIs(t, err, parser.ErrSyntax)
				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Len(t, result.Stmts, tt.wantStmts)

			if tt.checkNode != nil {
				tt.checkNode(t, result)
			}
		})
	}
}

func TestNonTransactional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "plain DDL is transactional",
			sql:  "CREATE TABLE users (id INT); CREATE INDEX idx_users_id ON users (id);",
		},
		{
			name: "CREATE INDEX CONCURRENTLY",
			sql:  "CREATE TABLE t (id INT);\nCREATE INDEX CONCURRENTLY idx_t ON t (id);",
			want: []string{"CREATE INDEX CONCURRENTLY idx_t ON t (id);"},
		},
		{
			name: "DROP INDEX CONCURRENTLY",
			sql:  "DROP INDEX CONCURRENTLY idx_t;",
			want: []string{"DROP INDEX CONCURRENTLY idx_t;"},
		},
		{
			name: "VACUUM",
			sql:  "VACUUM FULL users;",
			want: []string{"VACUUM FULL users;"},
		},
		{
			name: "CREATE DATABASE",
			sql:  "CREATE DATABASE analytics;",
			want: []string{"CREATE DATABASE analytics;"},
		},
		{
			name: "explicit COMMIT",
			sql:  "CREATE TABLE t (id INT); COMMIT;",
			want: []string{"COMMIT;"},
		},
		{
			name: "ANALYZE is allowed",
			sql:  "ANALYZE users;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parser.NonTransactional(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNonTransactional_invalidSQL_returnsSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := parser.NonTransactional("CREAT TABLE t (id INT);")

	require.ErrorIs(t, err, parser.ErrSyntax)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SELECT 1", parser.Truncate("SELECT 1", 100))
	assert.Equal(t, "SELECT 1", parser.Truncate("SELECT 1", 8))
	assert.Equal(t, "SELECT 1", parser.Truncate("SELECT\n    1", 100), "whitespace is collapsed")

	result := parser.Truncate("SELECT * FROM very_long_table_name WHERE id = 1", 20)
	assert.Equal(t, "SELECT * FROM ver...", result)
	assert.Len(t, result, 20)

	// maxLen < 4 returns the full string to avoid panic
	assert.Equal(t, "SELECT 1", parser.Truncate("SELECT 1", 3))
}

func TestStatementSQL(t *testing.T) {
	t.Parallel()

	fullSQL := "CREATE TABLE a (id INT); CREATE TABLE b (id INT);"
	result, err := parser.ParseStatements(fullSQL)
	require.NoError(t, err)

	assert.Equal(t, "CREATE TABLE a (id INT);", parser.StatementSQL(result.Stmts, 0, result.SQL))
	assert.Equal(t, "CREATE TABLE b (id INT);", parser.StatementSQL(result.Stmts, 1, result.SQL))
	assert.Empty(t, parser.StatementSQL(result.Stmts, 5, result.SQL))
	assert.Empty(t, parser.StatementSQL(result.Stmts, -1, result.SQL))
	assert.Empty(t, parser.StatementSQL(nil, 0, "SELECT 1"))
}
