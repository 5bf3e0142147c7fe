package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestListMigrations(t *testing.T) {
	all, err := listMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, "000", all[0].version, "schema_migrations must be created first")
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].file, all[i].file)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "lens.db"), nil)
	require.NoError(t, err)
	defer db.Close()

	log := zaptest.NewLogger(t).Sugar()
	require.NoError(t, Migrate(db, log))

	before, err := appliedVersions(db)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, log), "second run applies nothing")
	after, err := appliedVersions(db)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAppliedVersions_FreshDatabase(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "fresh.db"), nil)
	require.NoError(t, err)
	defer db.Close()

	applied, err := appliedVersions(db)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrate_ConflictingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conflict.db")
	db, err := Open(path, nil)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE schema_migrations (bad_schema TEXT)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenWithMigrations(path, nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "migrate")
	assert.Contains(t, fmt.Sprintf("%+v", err), "migrate.go", "stack should reference the failing step")
}

func TestMigrate_ClosedDatabase(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "closed.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = Migrate(db, nil)
	require.Error(t, err)
	assert.True(t, IsDatabaseClosed(err))
}

func TestMigrate_CreatesSeedTables(t *testing.T) {
	db, err := OpenWithMigrations(filepath.Join(t.TempDir(), "seed.db"), nil)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{
		"seed_imports",
		"schema_nodes",
		"schema_edges",
		"concepts",
		"concept_field_bindings",
		"perspectives",
		"perspective_concept_weights",
		"intents",
		"intent_concept_weights",
		"intent_perspective_weights",
		"intent_query_bindings",
	} {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s should exist", table)
	}

	var applied []string
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var v string
		require.NoError(t, rows.Scan(&v))
		applied = append(applied, v)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"000", "001"}, applied)
}
