package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/schemalens/am"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/server"
	"github.com/teranos/schemalens/snapshot"
)

// ServerCmd starts the schemalens HTTP server
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "Serve schema resolution over HTTP and websocket",
	Long: `Serve resolution, join planning and snapshot inspection over HTTP.
Websocket clients on /ws/snapshots are told about every snapshot swap.

With --watch (or seeds.watch) the seed directory is watched and the
snapshot rebuilt after edits settle. A rejected rebuild keeps the active
snapshot.`,
	RunE: runServer,
}

var (
	serverPort  int
	serverWatch bool
)

func init() {
	addSourceFlags(ServerCmd)
	ServerCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides server.port)")
	ServerCmd.Flags().BoolVar(&serverWatch, "watch", false, "Rebuild the snapshot when seed files change")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := snapshotSource(cfg, seedsFlag, dbPathFlag)
	if err != nil {
		return err
	}
	defer closeSource()

	holder, reloader, err := loadHolder(ctx, cfg, source)
	if err != nil {
		// Serve anyway; /health reports no_snapshot until a reload succeeds
		logger.SnapshotWarnw("No valid snapshot at startup",
			logger.FieldPath, source.Describe(),
			logger.FieldError, err,
		)
	}

	watch := serverWatch || cfg.Seeds.Watch
	if dirSource, ok := source.(snapshot.DirSource); ok && watch {
		watcher, err := am.NewSeedWatcher(dirSource.Dir, cfg.GetSeedDebounce(), logger.Logger)
		if err != nil {
			return err
		}
		watcher.OnReload(func(ctx context.Context) error {
			_, err := reloader.Reload(ctx)
			return err
		})
		watcher.Start(ctx)
		defer watcher.Stop()
	} else if watch {
		pterm.Warning.Println("--watch needs a seed directory; the metadata store is not watched")
	}

	port := cfg.GetServerPort()
	if serverPort != 0 {
		port = serverPort
	}

	printServerBanner(source.Describe(), port, holder, verbosity)

	srv := server.New(holder, server.Options{
		AllowedOrigins: cfg.GetServerAllowedOrigins(),
		DefaultIntent:  cfg.Resolver.DefaultIntent,
		MaxTables:      cfg.Resolver.MaxTables,
		Reloader:       reloader,
	}, logger.Logger)

	if err := srv.Start(ctx, port); err != nil {
		return errors.Wrap(err, "server failed")
	}
	pterm.Success.Println("Server stopped cleanly")
	return nil
}

func printServerBanner(source string, port int, holder *snapshot.Holder, verbosity int) {
	pterm.DefaultHeader.Println("schemalens")
	pterm.Printfln("Source:   %s", source)
	pterm.Printfln("Port:     %d", port)
	if snap := holder.Current(); snap != nil {
		info := snap.Info()
		pterm.Printfln("Snapshot: v%d %s (digest %s)", info.Version, info.ID, shortDigest(info.Digest))
	} else {
		pterm.Printfln("Snapshot: %s", pterm.Yellow("none"))
	}
	if logger.ShouldOutput(verbosity, logger.OutputStartup) {
		pterm.Printfln("Logging:  %s", logger.LevelName(verbosity))
	}
	pterm.Println()
}
