package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/graph"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/resolution"
	"github.com/teranos/schemalens/sym"
)

// PrintError reports a command failure with its kind, identifiers and hint.
func PrintError(err error) {
	if le, ok := lenserr.As(err); ok {
		pterm.Error.Printfln("%s", le.Error())
		if c := le.ContextString(); c != "" {
			pterm.FgGray.Printfln("  %s", c)
		}
		if h := le.Hint(); h != "" {
			pterm.Info.Printfln("hint: %s", h)
		}
		return
	}
	pterm.Error.Printfln("%s", err)
	for _, h := range errors.GetAllHints(err) {
		pterm.Info.Printfln("hint: %s", h)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printJoinPlan(edges []graph.Edge, total graph.JoinCost) {
	if len(edges) == 0 {
		pterm.Println("No joins needed")
		return
	}
	pterm.DefaultSection.Printfln("%s Join plan (total cost %d)", sym.Join, total)
	for i, e := range edges {
		pterm.Printfln("  %d. %s %s %s ON %s %s",
			i+1,
			pterm.Cyan(e.FromTable), sym.Graph, pterm.Cyan(e.ToTable),
			e.JoinColumn,
			pterm.Gray(fmt.Sprintf("(cost %d)", e.Cost)),
		)
	}
}

func printResolution(res *resolution.Result, verbosity int) {
	pterm.FgGray.Printfln("snapshot %s v%d, intent %s", res.SnapshotID, res.SnapshotVersion, res.Intent)
	printJoinPlan(res.JoinPlan, res.TotalCost)

	if len(res.Bindings) > 0 {
		pterm.DefaultSection.Printfln("%s Field meanings", sym.Concept)
		for _, b := range res.Bindings {
			pterm.Printfln("  %s %s %s", b.Field, pterm.Green("→"), pterm.Green(b.Concept.Name))
			if !logger.ShouldOutput(verbosity, logger.OutputResolution) {
				continue
			}
			pterm.FgGray.Printfln("      reason: %s", b.Reason)
			if b.Overridden != nil {
				pterm.FgGray.Printfln("      overrides primary: %s", b.Overridden.Name)
			}
			if len(b.Suppressed) > 0 {
				names := make([]string, 0, len(b.Suppressed))
				for _, c := range b.Suppressed {
					names = append(names, c.Name)
				}
				pterm.FgGray.Printfln("      suppressed: %s", strings.Join(names, ", "))
			}
			if len(b.Emphasized) > 0 {
				pterm.FgGray.Printfln("      emphasized by: %s", strings.Join(b.Emphasized, ", "))
			}
			if len(b.Refines) > 0 {
				pterm.FgGray.Printfln("      refines: %s", strings.Join(b.Refines, " → "))
			}
		}
	}

	for _, qb := range res.QueryBindings {
		pterm.Info.Printfln("ground-truth query: %s/%s", qb.Category, qb.Name)
	}
	for _, w := range res.Warnings {
		pterm.Warning.Println(w)
	}
}
