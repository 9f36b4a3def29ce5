package migration

import "github.com/aqasim81/schema-migrate/internal/parser"

// Direction is the way a migration is executed.
type Direction string

// Directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migration represents a single parsed migration file.
type Migration struct {
	ID      string // file name, e.g. "20240101120000_create_users.sql"
	UpSQL   string // block after the up marker
	DownSQL string // block after the down marker
	Path    string // location within the source, for messages
}

// Block returns the statements to run in direction d.
func (m Migration) Block(d Direction) string {
	if d == Down {
		return m.DownSQL
	}

	return m.UpSQL
}

// FromText parses raw into a Migration identified by id.
func FromText(id, raw string) (Migration, error) {
	sections, err := parser.Parse(raw)
	if err != nil {
		return Migration{}, err
	}

	return Migration{
		ID:      id,
		UpSQL:   sections.Up,
		DownSQL: sections.Down,
		Path:    id,
	}, nil
}
