package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/schemalens/am"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/mcpserver"
)

// MCPCmd serves resolution tools over the Model Context Protocol
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve resolution tools over MCP (stdio)",
	Long: `Serve the resolve_schema, join_path and list_intents tools to an LLM
prompt builder over stdio. Logs go to stderr; stdout carries the protocol.`,
	RunE: runMCP,
}

func init() {
	addSourceFlags(MCPCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	source, closeSource, err := snapshotSource(cfg, seedsFlag, dbPathFlag)
	if err != nil {
		return err
	}
	defer closeSource()

	holder, _, err := loadHolder(cmd.Context(), cfg, source)
	if err != nil {
		return err
	}

	s := mcpserver.New(holder, mcpserver.Options{
		Name:          cfg.GetMCPName(),
		DefaultIntent: cfg.Resolver.DefaultIntent,
		MaxTables:     cfg.Resolver.MaxTables,
	}, logger.Logger)
	return s.Serve()
}
