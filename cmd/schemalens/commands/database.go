package commands

import (
	"context"
	"database/sql"

	"github.com/teranos/schemalens/am"
	"github.com/teranos/schemalens/db"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/metastore"
	"github.com/teranos/schemalens/snapshot"
)

// openDatabase opens and migrates the metadata store.
// If dbPath is empty, the path comes from am config.
func openDatabase(cfg *am.Config, dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}
	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}
	return database, nil
}

// snapshotSource picks where snapshots are built from: a seed directory
// when one is given (flag or seeds.dir), otherwise the metadata store.
// The returned closer releases the database, if one was opened.
func snapshotSource(cfg *am.Config, seedsDir, dbPath string) (snapshot.Source, func(), error) {
	if seedsDir == "" {
		seedsDir = cfg.Seeds.Dir
	}
	if seedsDir != "" {
		return snapshot.DirSource{Dir: seedsDir, FormatConstraint: cfg.Seeds.FormatConstraint}, func() {}, nil
	}

	database, err := openDatabase(cfg, dbPath)
	if err != nil {
		return nil, nil, err
	}
	store := metastore.NewSQLStore(database, logger.Logger)
	return store, func() { database.Close() }, nil
}

// loadHolder builds the first snapshot from source and returns a holder
// with it published, plus the reloader for later rebuilds.
func loadHolder(ctx context.Context, cfg *am.Config, source snapshot.Source) (*snapshot.Holder, *snapshot.Reloader, error) {
	holder := snapshot.NewHolder()
	reloader := snapshot.NewReloader(holder, source, snapshot.Options{
		StrictTables: cfg.Resolver.StrictTables,
	}, logger.Logger)

	if _, err := reloader.Reload(ctx); err != nil {
		return holder, reloader, err
	}
	return holder, reloader, nil
}
