package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-organizer/pkg/config"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "timetable.db")
	db, err := Open(config.DatabaseConfig{Driver: DriverSQLite, Path: path, MaxOpenConns: 1})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"homework", "snapshots"}, tables)

	var indexes []string
	require.NoError(t, db.SelectContext(ctx, &indexes, `SELECT name FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_%' ORDER BY name`))
	assert.Equal(t, []string{"idx_homework_due_date", "idx_homework_subject"}, indexes)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)

	_, err = Open(config.DatabaseConfig{Driver: DriverPostgres})
	require.Error(t, err)
}
