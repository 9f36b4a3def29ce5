package runner

import (
	"errors"
	"fmt"

	"github.com/aqasim81/schema-migrate/internal/migration"
)

// ErrExecution indicates a migration block or its transaction failed in the database.
var ErrExecution = errors.New("migration execution failed")

// ErrInvalidSteps indicates a rollback step count below one.
var ErrInvalidSteps = errors.New("steps must be at least 1")

// ErrOutOfOrder indicates pending migrations that sort before the newest applied one
// while the reject policy is active.
var ErrOutOfOrder = errors.New("out-of-order migrations")

// ErrNonTransactional indicates a block containing statements that cannot run in a transaction.
var ErrNonTransactional = errors.New("statement cannot run inside a transaction")

// ErrInvalidPolicy indicates an unknown out-of-order policy name.
var ErrInvalidPolicy = errors.New("invalid out-of-order policy")

// MigrationError ties a failure to the migration and direction that caused it.
type MigrationError struct {
	ID        string
	Direction migration.Direction
	Err       error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s (%s): %v", e.ID, e.Direction, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
