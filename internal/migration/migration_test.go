package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-migrate/internal/migration"
	"github.com/aqasim81/schema-migrate/internal/parser"
)

func TestFromText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantErr  error
		wantUp   string
		wantDown string
	}{
		{
			name:     "splits both blocks",
			raw:      "-- migrate:up\nCREATE TABLE t (id INT);\n-- migrate:down\nDROP TABLE t;\n",
			wantUp:   "CREATE TABLE t (id INT);",
			wantDown: "DROP TABLE t;",
		},
		{
			name:    "missing down marker is malformed",
			raw:     "-- migrate:up\nCREATE TABLE t (id INT);\n",
			wantErr: parser.ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := migration.FromText("001_t.sql", tt.raw)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "001_t.sql", m.ID)
			assert.Equal(t, tt.wantUp, m.UpSQL)
			assert.Equal(t, tt.wantDown, m.DownSQL)
		})
	}
}

func TestMigration_Block(t *testing.T) {
	t.Parallel()

	m := migration.Migration{UpSQL: "up", DownSQL: "down"}

	assert.Equal(t, "up", m.Block(migration.Up))
	assert.Equal(t, "down", m.Block(migration.Down))
}
