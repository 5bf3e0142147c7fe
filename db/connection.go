package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/sym"
)

// SQLiteBusyTimeoutMS is how long a writer waits on a locked database.
const SQLiteBusyTimeoutMS = 5000

// dsn carries the pragmas as driver parameters so every pooled connection
// gets them, not only the first one.
func dsn(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", fmt.Sprint(SQLiteBusyTimeoutMS))
	return "file:" + path + "?" + params.Encode()
}

// Open opens the SQLite metadata database at path with WAL, foreign keys
// and a busy timeout. A nil logger operates silently.
func Open(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	log = logger.OrNop(log)
	log.Debugw("Opening database", logger.FieldPath, path, logger.FieldSymbol, sym.DB)

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// sql.Open is lazy; surface a bad path here rather than on first query
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s", path)
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to read journal mode")
	}

	log.Infow("Database opened",
		logger.FieldPath, path,
		logger.FieldSymbol, sym.DB,
		"journal_mode", journalMode,
	)
	return db, nil
}

// OpenWithMigrations opens the database and applies every pending migration.
func OpenWithMigrations(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	db, err := Open(path, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, log); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "migrate %s", path)
	}
	return db, nil
}
