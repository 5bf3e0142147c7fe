package db

import (
	"database/sql"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"github.com/teranos/schemalens/errors"
)

func TestIsDatabaseClosed(t *testing.T) {
	assert.False(t, IsDatabaseClosed(nil))
	assert.True(t, IsDatabaseClosed(errors.Wrap(ErrDatabaseClosed, "import records")))
	assert.True(t, IsDatabaseClosed(errors.New("sql: database is closed")))
	assert.True(t, IsDatabaseClosed(errors.Wrap(sql.ErrConnDone, "load records")))
	assert.False(t, IsDatabaseClosed(errors.New("no such table: concepts")))
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(errors.Wrap(sqlite3.Error{Code: sqlite3.ErrBusy}, "commit import")))
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.False(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsBusy(errors.New("busy")))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	closed := Classify(errors.New("sql: database is closed"))
	assert.True(t, errors.Is(closed, ErrDatabaseClosed))

	busy := Classify(sqlite3.Error{Code: sqlite3.ErrBusy})
	assert.NotEmpty(t, errors.GetAllHints(busy))

	other := errors.New("no such table")
	assert.Equal(t, other, Classify(other))
}

func TestClassify_ClosedHandle(t *testing.T) {
	database, err := Open(t.TempDir()+"/closed.db", nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	database.Close()

	_, err = database.Exec("SELECT 1")
	assert.True(t, errors.Is(Classify(err), ErrDatabaseClosed))
}
