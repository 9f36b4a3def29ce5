package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import (
	"errors"
	"fmt"
)

// ErrMalformed indicates a migration file whose sections could not be extracted.
var ErrMalformed = errors.New("malformed migration")

// ErrSyntax indicates a block PostgreSQL would reject at parse time.
var ErrSyntax = errors.New("invalid SQL syntax")

// MalformedError reports why a migration file could not be split into sections.
// It matches ErrMalformed under errors.Is.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformed, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

const (
	reasonMissingUp   = "missing up marker"
	reasonMissingDown = "missing down marker"
	reasonEmptyUp     = "empty up section"
	reasonEmptyDown   = "empty down section"
)
