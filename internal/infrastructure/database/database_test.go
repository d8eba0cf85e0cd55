package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndMigrate_SQLite(t *testing.T) {
	db, err := New("sqlite3", filepath.Join(t.TempDir(), "fridge.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, "sqlite3"))
	// idempotent
	require.NoError(t, Migrate(db, "sqlite3"))

	version, err := Version(db, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	for _, table := range []string{"fridge_ingredients", "dinner_history"} {
		var n int
		require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
		assert.Zero(t, n)
	}

	assert.NoError(t, Ping(context.Background(), db))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New("oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported DB driver")

	_, err = gooseDialect("oracle")
	assert.Error(t, err)
}
