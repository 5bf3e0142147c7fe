package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/teranos/schemalens/db"
)

// CreateTestDB creates a migrated SQLite database in the test's temp dir.
// A file is used instead of :memory: so every pooled connection sees the
// same data. Cleanup is registered via t.Cleanup().
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenWithMigrations(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
	})

	return conn
}
