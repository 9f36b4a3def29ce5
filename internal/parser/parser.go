package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import "strings"

// Section markers. Each must appear on its own line in a migration file.
const (
	UpMarker   = "-- migrate:up"
	DownMarker = "-- migrate:down"
)

// Sections holds the two statement blocks of a migration file.
type Sections struct {
	Up   string
	Down string
}

// Parse splits raw migration text into its up and down blocks.
//
// The up marker is located by its first occurrence and the down marker by its
// first occurrence after the up marker. Text before the up marker is ignored.
// Both blocks are trimmed and must be non-empty.
func Parse(raw string) (Sections, error) {
	upIdx := strings.Index(raw, UpMarker)
	if upIdx < 0 {
		return Sections{}, &MalformedError{Reason: reasonMissingUp}
	}

	rest := raw[upIdx+len(UpMarker):]

	downIdx := strings.Index(rest, DownMarker)
	if downIdx < 0 {
		return Sections{}, &MalformedError{Reason: reasonMissingDown}
	}

	s := Sections{
		Up:   strings.TrimSpace(rest[:downIdx]),
		Down: strings.TrimSpace(rest[downIdx+len(DownMarker):]),
	}

	if s.Up == "" {
		return Sections{}, &MalformedError{Reason: reasonEmptyUp}
	}

	if s.Down == "" {
		return Sections{}, &MalformedError{Reason: reasonEmptyDown}
	}

	return s, nil
}

// Template returns the body written for a freshly created migration file.
func Template() string {
	return UpMarker + "\n\n" + DownMarker + "\n"
}
