package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/aqasim81/schema-migrate/internal/database"
)

// Entry is one row of the schema_migrations table.
type Entry struct {
	ID        int64
	Name      string
	AppliedAt time.Time
}

// Ledger manages the schema_migrations table.
type Ledger struct {
	q    database.Querier
	stmt statements
}

// New creates a Ledger that reads through q using the SQL of dialect.
func New(q database.Querier, dialect database.Dialect) *Ledger {
	return &Ledger{q: q, stmt: statementsFor(dialect)}
}

// EnsureInitialized creates the schema_migrations table if it does not exist.
func (l *Ledger) EnsureInitialized(ctx context.Context) error {
	if _, err := l.q.Exec(ctx, l.stmt.create); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrLedger, TableName, err)
	}

	return nil
}

// Applied returns every ledger entry in the order it was recorded.
func (l *Ledger) Applied(ctx context.Context) ([]Entry, error) {
	rows, err := l.q.Query(ctx, l.stmt.list)
	if err != nil {
		return nil, fmt.Errorf("%w: querying applied migrations: %w", ErrLedger, err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			e   Entry
			raw any
		)

		if err := rows.Scan(&e.ID, &e.Name, &raw); err != nil {
			return nil, fmt.Errorf("%w: scanning migration row: %w", ErrLedger, err)
		}

		if e.AppliedAt, err = toTime(raw); err != nil {
			return nil, fmt.Errorf("%w: migration %s: %w", ErrLedger, e.Name, err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading applied migrations: %w", ErrLedger, err)
	}

	return entries, nil
}

// AppliedSet returns the names of every applied migration.
func (l *Ledger) AppliedSet(ctx context.Context) (map[string]struct{}, error) {
	entries, err := l.Applied(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e.Name] = struct{}{}
	}

	return set, nil
}

// RecordApplied inserts name through q, which must be the transaction that ran the migration.
func (l *Ledger) RecordApplied(ctx context.Context, q database.Querier, name string) error {
	if _, err := q.Exec(ctx, l.stmt.insert, name); err != nil {
		return fmt.Errorf("%w: recording %s as applied: %w", ErrLedger, name, err)
	}

	return nil
}

// RecordReverted deletes name through q, which must be the transaction that reversed the migration.
func (l *Ledger) RecordReverted(ctx context.Context, q database.Querier, name string) error {
	n, err := q.Exec(ctx, l.stmt.delete, name)
	if err != nil {
		return fmt.Errorf("%w: recording %s as reverted: %w", ErrLedger, name, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %w: %s", ErrLedger, ErrNotRecorded, name)
	}

	return nil
}

// sqliteTimeLayouts are the text forms SQLite stores CURRENT_TIMESTAMP and driver-written times in.
var sqliteTimeLayouts = []string{ //nolint:gochecknoglobals // read-only
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05Z07:00",
	time.RFC3339Nano,
}

// toTime converts applied_at as returned by either driver.
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported applied_at type %T", v)
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unparsable applied_at %q", s)
}
