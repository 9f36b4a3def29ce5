package migration

import "errors"

// ErrSourceUnreadable indicates the migrations directory could not be listed or a file could not be read.
var ErrSourceUnreadable = errors.New("migration source unreadable")

// ErrNotFound indicates an identifier with no matching file.
var ErrNotFound = errors.New("migration file not found")

// ErrDuplicateIdentifier indicates two files whose names differ only in case.
var ErrDuplicateIdentifier = errors.New("duplicate migration identifier")
