package db

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/teranos/schemalens/errors"
)

// ErrDatabaseClosed is returned when the metadata store is used after Close.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err comes from a closed handle.
// database/sql does not export its closed-database error, hence the message match.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// IsBusy reports whether sqlite gave up waiting for a lock after busy_timeout.
func IsBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// Classify maps driver failures onto the package sentinels and attaches an
// operator hint. Other errors pass through unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case IsDatabaseClosed(err):
		return errors.Mark(err, ErrDatabaseClosed)
	case IsBusy(err):
		return errors.WithHint(err, "another process holds the write lock on the metadata store; retry once it finishes")
	}
	return err
}
