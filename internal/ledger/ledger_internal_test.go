package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-migrate/internal/database"
)

func TestToTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		in      any
		want    time.Time
		wantErr bool
	}{
		{name: "time.Time is normalised to UTC", in: want.In(time.FixedZone("X", 3600)), want: want},
		{name: "SQLite CURRENT_TIMESTAMP text", in: "2024-01-02 03:04:05", want: want},
		{name: "RFC3339 bytes", in: []byte("2024-01-02T03:04:05Z"), want: want},
		{name: "nil", in: nil, want: time.Time{}},
		{name: "garbage string", in: "yesterday", wantErr: true},
		{name: "unsupported type", in: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := toTime(tt.in)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestStatementsFor_placeholdersMatchDialect(t *testing.T) {
	t.Parallel()

	assert.Contains(t, statementsFor(database.Postgres).insert, "$1")
	assert.Contains(t, statementsFor(database.SQLite).insert, "?")
	assert.Contains(t, statementsFor(database.Postgres).create, TableName)
	assert.Contains(t, statementsFor(database.SQLite).create, TableName)
}
