package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/schemalens/am"
	"github.com/teranos/schemalens/concept"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/resolution"
	"github.com/teranos/schemalens/seed"
	"github.com/teranos/schemalens/snapshot"
	"github.com/teranos/schemalens/sym"
)

// ValidateCmd checks a seed directory without activating it
var ValidateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: sym.Snapshot + " Validate a seed directory",
	Long: `Load every seed file in the directory and build a snapshot from it.
Nothing is published; the command reports the first violation found.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

// ResolveCmd resolves field meanings and joins for an intent
var ResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: sym.Concept + " Resolve fields and joins for an intent",
	Long: `Resolve what each field means under an analytical intent and plan the
joins connecting the tables involved.

Examples:
  schemalens resolve --intent defect_cost_analysis --tables suppliers,product_defects --fields product_defects.severity
  schemalens resolve --intent supplier_scorecard --tables suppliers --json`,
	RunE: runResolve,
}

// PathCmd plans the cheapest join between tables
var PathCmd = &cobra.Command{
	Use:   "path <table> [table...]",
	Short: sym.Graph + " Plan the cheapest join between tables",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPath,
}

var (
	seedsFlag  string
	dbPathFlag string
	jsonFlag   bool

	resolveIntent string
	resolveTables []string
	resolveFields string
)

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&seedsFlag, "seeds", "", "Seed directory (overrides seeds.dir; empty reads the metadata store)")
	cmd.Flags().StringVar(&dbPathFlag, "db-path", "", "Custom database path (overrides config)")
}

func init() {
	addSourceFlags(ResolveCmd)
	ResolveCmd.Flags().StringVar(&resolveIntent, "intent", "", "Intent name (defaults to resolver.default_intent)")
	ResolveCmd.Flags().StringSliceVar(&resolveTables, "tables", nil, "Tables to join (comma-separated)")
	ResolveCmd.Flags().StringVar(&resolveFields, "fields", "", "Fields to resolve as table.field (comma-separated)")
	ResolveCmd.Flags().BoolVar(&jsonFlag, "json", false, "Output the result as JSON")

	addSourceFlags(PathCmd)
	PathCmd.Flags().BoolVar(&jsonFlag, "json", false, "Output the plan as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	recs, err := seed.LoadDir(cmd.Context(), args[0], cfg.Seeds.FormatConstraint)
	if err != nil {
		return err
	}
	snap, err := snapshot.Build(recs, snapshot.Options{StrictTables: cfg.Resolver.StrictTables})
	if err != nil {
		return err
	}

	info := snap.Info()
	pterm.Success.Printfln("Seed directory is valid (digest %s)", shortDigest(info.Digest))
	for _, name := range sortedKeys(info.Counts) {
		pterm.Printfln("  %-28s %d", name, info.Counts[name])
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")

	fields, err := concept.ParseFieldRefs(resolveFields)
	if err != nil {
		return err
	}
	intentName := resolveIntent
	if intentName == "" {
		intentName = cfg.Resolver.DefaultIntent
	}
	if intentName == "" {
		return errors.WithHint(
			errors.NewInvalidRequestError("no intent given"),
			"pass --intent or set resolver.default_intent",
		)
	}

	source, closeSource, err := snapshotSource(cfg, seedsFlag, dbPathFlag)
	if err != nil {
		return err
	}
	defer closeSource()

	ctx := logger.WithComponent(cmd.Context(), "cli")
	holder, _, err := loadHolder(ctx, cfg, source)
	if err != nil {
		return err
	}

	facade := resolution.NewFacade(holder, resolution.Options{MaxTables: cfg.Resolver.MaxTables}, logger.Logger)
	res, err := facade.Resolve(ctx, resolution.Query{
		Intent: intentName,
		Tables: trimAll(resolveTables),
		Fields: fields,
	})
	if err != nil {
		return err
	}

	if jsonFlag {
		return printJSON(res)
	}
	printResolution(res, verbosity)
	return nil
}

func runPath(cmd *cobra.Command, args []string) error {
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

	plan, err := holder.Current().Joins.Plan(args)
	if err != nil {
		return err
	}
	if jsonFlag {
		return printJSON(plan)
	}
	printJoinPlan(plan.Edges, plan.TotalCost)
	return nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
