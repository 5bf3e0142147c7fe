package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/sym"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// migration is one embedded SQL file; version is its numeric file prefix.
type migration struct {
	version string
	file    string
}

func listMigrations() ([]migration, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var out []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, errors.Newf("migration %s has no version prefix", name)
		}
		out = append(out, migration{version: version, file: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].file < out[j].file })
	return out, nil
}

// appliedVersions reads schema_migrations. Before migration 000 has run the
// table does not exist and the result is empty.
func appliedVersions(db *sql.DB) (map[string]bool, error) {
	var tables int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'",
	).Scan(&tables)
	if err != nil {
		return nil, errors.Wrap(err, "check schema_migrations")
	}
	applied := make(map[string]bool)
	if tables == 0 {
		return applied, nil
	}

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read schema_migrations")
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan schema_migrations")
		}
		applied[v] = true
	}
	return applied, errors.Wrap(rows.Err(), "iterate schema_migrations")
}

// apply runs one migration and records it in the same transaction.
func apply(db *sql.DB, m migration) error {
	body, err := migrations.ReadFile(path.Join(migrationsDir, m.file))
	if err != nil {
		return errors.Wrapf(err, "read %s", m.file)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", m.file)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(body)); err != nil {
		return errors.Wrapf(err, "execute %s", m.file)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return errors.Wrapf(err, "record %s", m.file)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", m.file)
}

// Migrate applies every pending embedded migration in file-name order.
func Migrate(db *sql.DB, log *zap.SugaredLogger) error {
	log = logger.OrNop(log)

	all, err := listMigrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	if len(applied) == 0 && len(all) > 0 && all[0].version != "000" {
		return errors.Newf("first migration must be 000, got %s", all[0].file)
	}

	ran := 0
	for _, m := range all {
		if applied[m.version] {
			log.Debugw("Skipping migration (already applied)", "migration", m.file, logger.FieldVersion, m.version)
			continue
		}
		log.Infow("Applying migration", "migration", m.file, logger.FieldVersion, m.version)
		if err := apply(db, m); err != nil {
			return err
		}
		ran++
	}

	log.Infow("Migrations complete",
		logger.FieldSymbol, sym.DB,
		logger.FieldCount, ran,
		"total", len(all),
	)
	return nil
}
