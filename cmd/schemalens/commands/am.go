package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/schemalens/am"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.Config + " Manage schemalens configuration",
	Long: sym.Config + ` am: Manage schemalens configuration ("I am")

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/schemalens/lens.toml)
3. User config (~/.schemalens/lens.toml)
4. Project config (./lens.toml, searching up directories)
5. Environment variables (SCHEMALENS_* prefix)

Examples:
  schemalens am show                    # Show current configuration
  schemalens am show --format json      # Show configuration in JSON format
  schemalens am get resolver.max_tables # Get a specific config value
  schemalens am where                   # Show which source set each value
  schemalens am init                    # Write ./lens.toml from the active config`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, seeds.dir)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each configuration value is loaded from",
	RunE:  runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a project lens.toml from the active configuration",
	Long: `Write the active configuration to ./lens.toml (or --path). An existing
file is rotated into .back1 through .back3 first.`,
	RunE: runAmInit,
}

var (
	configFormat string
	initPath     string
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().StringVar(&initPath, "path", am.ConfigFileName, "Where to write the config")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Printf("# schemalens configuration\n%s", string(data))

	case "toml":
		data, err := am.MarshalTOML(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("# schemalens configuration\n%s", string(data))

	default:
		return errors.NewInvalidRequestError("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if !am.GetViper().IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}
	fmt.Println(am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("Configuration cascade (later overrides earlier)")
	pterm.Println("  1. [DEFAULT]  Built-in defaults")
	for i, c := range am.CandidatePaths() {
		state := pterm.Gray("missing")
		if _, err := os.Stat(c.Path); err == nil {
			state = pterm.Green("found")
		}
		pterm.Printfln("  %d. [%-8s] %s (%s)", i+2, c.Source, c.Path, state)
	}
	pterm.Printfln("  %d. [ENV]      SCHEMALENS_* environment variables", len(am.CandidatePaths())+2)
	pterm.Println()

	rows := pterm.TableData{{"Key", "Value", "Source"}}
	for _, s := range intro.Settings {
		value := fmt.Sprintf("%v", s.Value)
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		source := string(s.Source)
		if s.SourcePath != "" {
			source += " " + filepath.Clean(s.SourcePath)
		}
		rows = append(rows, []string{s.Key, value, source})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func runAmInit(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := am.WriteProjectConfig(initPath, cfg); err != nil {
		return err
	}
	pterm.Success.Printfln("%s Wrote %s", sym.Config, initPath)
	return nil
}
