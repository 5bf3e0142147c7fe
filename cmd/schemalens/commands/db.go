package commands

import (
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/schemalens/am"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/metastore"
	"github.com/teranos/schemalens/seed"
	"github.com/teranos/schemalens/snapshot"
	"github.com/teranos/schemalens/sym"
)

// DbCmd represents the db (metadata store) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage the schemalens metadata store",
	Long: sym.DB + ` db: Manage the schemalens metadata store

The metadata store persists one validated seed record set. Commands that
read snapshots use it when no seed directory is configured.

Examples:
  schemalens db import ./seeds    # Validate and import a seed directory
  schemalens db stats             # Show record counts and the last import`,
}

var dbImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Validate a seed directory and replace the stored records with it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbImport,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show metadata store statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.PersistentFlags().StringVar(&dbPathFlag, "db-path", "", "Custom database path (overrides config)")
	DbCmd.AddCommand(dbImportCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbImport(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	recs, err := seed.LoadDir(cmd.Context(), args[0], cfg.Seeds.FormatConstraint)
	if err != nil {
		return err
	}
	// Only records that build a valid snapshot are stored
	if _, err := snapshot.Build(recs, snapshot.Options{StrictTables: cfg.Resolver.StrictTables}); err != nil {
		return errors.Wrapf(err, "seed directory %s rejected", args[0])
	}

	database, err := openDatabase(cfg, dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	store := metastore.NewSQLStore(database, logger.Logger)
	info, err := store.ImportRecords(cmd.Context(), recs, "dir:"+args[0])
	if err != nil {
		return err
	}
	pterm.Success.Printfln("%s Imported %s (digest %s)", sym.DB, args[0], shortDigest(info.Digest))
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	database, err := openDatabase(cfg, dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := metastore.NewSQLStore(database, logger.Logger).Stats(cmd.Context())
	if err != nil {
		return err
	}

	path := dbPathFlag
	if path == "" {
		path = cfg.GetDatabasePath()
	}
	pterm.DefaultSection.Printfln("%s Metadata Store", sym.DB)
	pterm.Printfln("Database Path: %s", path)
	if stats.LastImport == nil {
		pterm.Warning.Println("No seed records imported yet")
		return nil
	}
	pterm.Printfln("Last Import:   %s from %s", stats.LastImport.ImportedAt.Format("2006-01-02 15:04:05"), stats.LastImport.Source)
	pterm.Printfln("Digest:        %s", stats.LastImport.Digest)
	if stats.LastImport.FormatVersion != "" {
		pterm.Printfln("Format:        %s", stats.LastImport.FormatVersion)
	}
	pterm.Println()

	rows := pterm.TableData{{"Table", "Rows"}}
	for _, name := range sortedKeys(stats.Counts) {
		rows = append(rows, []string{name, pterm.Sprint(stats.Counts[name])})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
