package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/schemalens/errors"
)

func TestOpen_PragmasOnEveryConnection(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "lens.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()

	// Two open transactions pin two distinct pooled connections
	tx1, err := db.Begin()
	require.NoError(t, err)
	defer tx1.Rollback()
	tx2, err := db.Begin()
	require.NoError(t, err)
	defer tx2.Rollback()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		t.Run(tt.pragma, func(t *testing.T) {
			var first, second string
			require.NoError(t, tx1.QueryRow("PRAGMA "+tt.pragma).Scan(&first))
			require.NoError(t, tx2.QueryRow("PRAGMA "+tt.pragma).Scan(&second))
			assert.Equal(t, tt.want, first)
			assert.Equal(t, tt.want, second, "second pooled connection")
		})
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.db")
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	db, err := Open(path, nil)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_MissingDirectory(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "no", "such", "dir", "lens.db"), nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to connect")
	assert.NotNil(t, errors.GetStack(err), "wrapped errors carry a stack")
}
