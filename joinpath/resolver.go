// Package joinpath plans a connected join across a set of tables.
package joinpath

import (
	"go.uber.org/zap"

	"github.com/teranos/schemalens/graph"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/logger"
)

// Plan is a connected join over a table set.
type Plan struct {
	Edges     []graph.Edge   `json:"edges"`
	TotalCost graph.JoinCost `json:"total_cost"`
	Tables    []string       `json:"tables"`
}

// Resolver plans joins over one schema graph.
type Resolver struct {
	graph  *graph.Graph
	logger *zap.SugaredLogger
}

// NewResolver returns a resolver over g. A nil logger is allowed.
func NewResolver(g *graph.Graph, log *zap.SugaredLogger) *Resolver {
	return &Resolver{graph: g, logger: logger.OrNop(log).Named("joinpath")}
}

// Plan connects tables with the cheapest join tree it can find.
//
// Two tables use the exact shortest path. For more, the tree starts as the
// shortest path between the first two tables; each remaining table, in input
// order, is spliced in by the cheapest path between it and any table already
// in the tree. One-way edges count in either direction here, since the
// join they produce is the same. Duplicate names collapse onto their first occurrence. A single table
// yields an empty plan.
func (r *Resolver) Plan(tables []string) (Plan, error) {
	tables = dedupe(tables)
	if len(tables) == 0 {
		return Plan{}, lenserr.New(lenserr.KindEmptyTableSet, "at least one table is required")
	}
	for _, t := range tables {
		if !r.graph.HasTable(t) {
			return Plan{}, lenserr.New(lenserr.KindUnknownTable, "table %q is not in the schema graph", t).
				With(lenserr.KeyTable, t)
		}
	}

	plan := Plan{Edges: []graph.Edge{}, Tables: []string{tables[0]}}
	inTree := map[string]bool{tables[0]: true}

	for _, target := range tables[1:] {
		if inTree[target] {
			continue
		}
		path, cost, err := r.graph.ConnectPath(plan.Tables, target)
		if err != nil {
			if le, ok := lenserr.As(err); ok && le.Kind == lenserr.KindNoPathFound {
				// Report the table that could not be reached from the tree.
				return Plan{}, lenserr.New(lenserr.KindNoPathFound,
					"table %q cannot be joined to %v", target, plan.Tables).
					With(lenserr.KeyFromTable, plan.Tables[0]).
					With(lenserr.KeyToTable, target)
			}
			return Plan{}, err
		}
		r.logger.Debugw("Spliced table into join tree",
			logger.FieldTable, target,
			logger.FieldEdges, len(path),
			logger.FieldCost, int(cost),
		)
		for _, e := range path {
			plan.Edges = append(plan.Edges, e)
			plan.TotalCost += e.Cost
			for _, t := range []string{e.FromTable, e.ToTable} {
				if !inTree[t] {
					inTree[t] = true
					plan.Tables = append(plan.Tables, t)
				}
			}
		}
	}

	logger.JoinDebugw("Join plan resolved",
		logger.FieldCount, len(tables),
		logger.FieldEdges, len(plan.Edges),
		logger.FieldCost, int(plan.TotalCost),
	)
	return plan, nil
}

// ShortestPath exposes the two-table path of the underlying graph.
func (r *Resolver) ShortestPath(from, to string) ([]graph.Edge, error) {
	return r.graph.ShortestPath(from, to)
}

func dedupe(tables []string) []string {
	seen := make(map[string]bool, len(tables))
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
