package ledger

import "errors"

// ErrLedger indicates the schema_migrations table could not be created, read or written.
var ErrLedger = errors.New("ledger failure")

// ErrNotRecorded indicates a delete matched no ledger row.
var ErrNotRecorded = errors.New("migration not recorded in schema_migrations")
