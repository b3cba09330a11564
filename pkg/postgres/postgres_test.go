package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"001_initial_schema.sql", "002_tickets.sql"}, names)
}

func TestMigrationsCreateLedgerTables(t *testing.T) {
	content, err := fs.ReadFile(migrationsFS, "migrations/001_initial_schema.sql")
	require.NoError(t, err)

	sql := string(content)
	for _, table := range []string{"team_members", "bookings", "final_schedule"} {
		assert.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS "+table), "missing table %s", table)
	}
	assert.Contains(t, sql, "UNIQUE (user_id, date)")
	assert.Contains(t, sql, "date         DATE NOT NULL UNIQUE")
}
