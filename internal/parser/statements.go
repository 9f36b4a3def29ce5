package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// maxStatementLen bounds statement text quoted in errors and logs.
const maxStatementLen = 80

// ParseResult holds the parsed AST and original SQL.
type ParseResult struct {
	Stmts []*pg_query.RawStmt
	SQL   string
}

// ParseStatements parses a PostgreSQL SQL string and returns the AST.
// Returns an empty result (zero statements) for empty or whitespace-only input.
func ParseStatements(sql string) (*ParseResult, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return &ParseResult{SQL: sql}, nil
	}

	tree, err := pg_query.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	return &ParseResult{
		Stmts: tree.Stmts,
		SQL:   trimmed,
	}, nil
}

// NonTransactional returns the statements in block that PostgreSQL refuses to
// run inside a transaction block, truncated for display.
// It returns ErrSyntax when block does not parse.
func NonTransactional(block string) ([]string, error) {
	result, err := ParseStatements(block)
	if err != nil {
		return nil, err
	}

	var found []string

	for i, stmt := range result.Stmts {
		if !requiresOwnTransaction(stmt.GetStmt()) {
			continue
		}

		found = append(found, Truncate(StatementSQL(result.Stmts, i, result.SQL), maxStatementLen))
	}

	return found, nil
}

// requiresOwnTransaction reports whether node cannot execute inside BEGIN/COMMIT.
// Explicit transaction control is included since it would end the runner's transaction.
func requiresOwnTransaction(node *pg_query.Node) bool {
	if node == nil {
		return false
	}

	switch n := node.GetNode().(type) {
	case *pg_query.Node_IndexStmt:
		return n.IndexStmt.GetConcurrent()
	case *pg_query.Node_DropStmt:
		return n.DropStmt.GetConcurrent()
	case *pg_query.Node_VacuumStmt:
		// ANALYZE shares the node but may run in a transaction.
		return n.VacuumStmt.GetIsVacuumcmd()
	case *pg_query.Node_CreatedbStmt,
		*pg_query.Node_DropdbStmt,
		*pg_query.Node_AlterSystemStmt,
		*pg_query.Node_CreateTableSpaceStmt,
		*pg_query.Node_DropTableSpaceStmt,
		*pg_query.Node_TransactionStmt:
		return true
	default:
		return false
	}
}

// StatementSQL extracts the SQL text for the statement at idx from the full SQL string.
// Uses StmtLocation of the current and next statement to determine boundaries.
func StatementSQL(stmts []*pg_query.RawStmt, idx int, fullSQL string) string {
	if idx < 0 || idx >= len(stmts) {
		return ""
	}

	start := int(stmts[idx].GetStmtLocation())

	var end int
	if idx+1 < len(stmts) {
		end = int(stmts[idx+1].GetStmtLocation())
	} else {
		end = len(fullSQL)
	}

	if start > len(fullSQL) || end > len(fullSQL) || start >= end {
		return ""
	}

	return strings.TrimSpace(fullSQL[start:end])
}

// Truncate shortens sql to maxLen characters, appending "..." if truncated.
func Truncate(sql string, maxLen int) string {
	sql = strings.Join(strings.Fields(sql), " ")
	if len(sql) <= maxLen || maxLen <= 3 {
		return sql
	}

	return sql[:maxLen-3] + "..."
}
