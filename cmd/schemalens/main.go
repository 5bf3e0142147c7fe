package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/schemalens/am"
	"github.com/teranos/schemalens/cmd/schemalens/commands"
	"github.com/teranos/schemalens/logger"
)

var rootCmd = &cobra.Command{
	Use:   "schemalens",
	Short: "schemalens - semantic schema resolution for analytical queries",
	Long: `schemalens - semantic schema resolution for analytical queries.

schemalens tells a query builder what a field means under an analytical
intent and which joins connect the tables involved.

Available commands:
  am       - Manage schemalens configuration ("I am")
  db       - Import seed records into the metadata store
  validate - Check a seed directory without activating it
  resolve  - Resolve fields and joins for an intent
  path     - Plan the cheapest join between tables
  server   - Serve resolution over HTTP and websocket
  mcp      - Serve resolution tools over MCP (stdio)

Examples:
  schemalens validate ./seeds
  schemalens resolve --intent defect_cost_analysis --tables suppliers,product_defects --fields product_defects.severity
  schemalens path suppliers product_defects
  schemalens server --seeds ./seeds --watch`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs := false
		if cfg, err := am.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
			if verbosity == 0 {
				verbosity = cfg.Log.Verbosity
			}
		}
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.ResolveCmd)
	rootCmd.AddCommand(commands.PathCmd)
	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.MCPCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		commands.PrintError(err)
		os.Exit(1)
	}
}
