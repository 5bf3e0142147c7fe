package graph

import (
	"fmt"
	"sort"

	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/seed"
)

// Build validates nodes and edges and assembles an immutable graph.
//
// Nodes are interned in table name order and edges are ranked by
// (from_table, to_table, join_column), so two builds from the same records
// in any order produce identical graphs.
func Build(nodes []seed.SchemaNode, edges []seed.SchemaEdge) (*Graph, error) {
	sortedNodes := append([]seed.SchemaNode(nil), nodes...)
	sort.SliceStable(sortedNodes, func(i, j int) bool {
		return sortedNodes[i].TableName < sortedNodes[j].TableName
	})

	g := &Graph{
		nodes: make([]Node, 0, len(sortedNodes)),
		index: make(map[string]TableID, len(sortedNodes)),
	}
	for _, n := range sortedNodes {
		if _, exists := g.index[n.TableName]; exists {
			return nil, lenserr.New(lenserr.KindDuplicateNode,
				"table %q declared more than once", n.TableName).
				With(lenserr.KeyTable, n.TableName)
		}
		id := TableID(len(g.nodes))
		g.index[n.TableName] = id
		g.nodes = append(g.nodes, Node{
			ID:          id,
			TableName:   n.TableName,
			TableType:   n.TableType,
			Description: n.Description,
		})
	}

	// Normalise costs before ranking so a zero weight and an explicit 1
	// rank identically.
	sortedEdges := make([]seed.SchemaEdge, 0, len(edges))
	for _, e := range edges {
		if e.Weight < 0 {
			return nil, lenserr.New(lenserr.KindInvalidJoinCost,
				"edge %s -> %s on %s has negative weight %d", e.FromTable, e.ToTable, e.JoinColumn, e.Weight).
				With(lenserr.KeyFromTable, e.FromTable).
				With(lenserr.KeyToTable, e.ToTable).
				With(lenserr.KeyValue, fmt.Sprint(e.Weight))
		}
		if e.Weight == 0 {
			e.Weight = int(DefaultJoinCost)
		}
		for _, endpoint := range []string{e.FromTable, e.ToTable} {
			if _, ok := g.index[endpoint]; !ok {
				return nil, lenserr.New(lenserr.KindDanglingEdgeReference,
					"edge %s -> %s references unknown table %q", e.FromTable, e.ToTable, endpoint).
					With(lenserr.KeyFromTable, e.FromTable).
					With(lenserr.KeyToTable, e.ToTable).
					With(lenserr.KeyTable, endpoint)
			}
		}
		sortedEdges = append(sortedEdges, e)
	}
	sort.SliceStable(sortedEdges, func(i, j int) bool {
		return seed.EdgeLess(sortedEdges[i], sortedEdges[j])
	})

	g.edges = make([]Edge, len(sortedEdges))
	g.adj = make([][]arc, len(g.nodes))
	for rank, e := range sortedEdges {
		from, to := g.index[e.FromTable], g.index[e.ToTable]
		edge := Edge{
			FromTable:             e.FromTable,
			ToTable:               e.ToTable,
			RelationshipType:      e.RelationshipType,
			JoinColumn:            e.JoinColumn,
			Cost:                  JoinCost(e.Weight),
			OneWay:                isOneWay(e.RelationshipType),
			JoinColumnDescription: e.JoinColumnDescription,
			NaturalLanguageAlias:  e.NaturalLanguageAlias,
			Example:               e.Example,
			Context:               e.Context,
			from:                  from,
			to:                    to,
			rank:                  rank,
		}
		g.edges[rank] = edge

		// Edges are appended in rank order, so every adjacency list is
		// already sorted by (rank, direction).
		g.adj[from] = append(g.adj[from], arc{edge: rank, to: to, dir: Forward})
		if !edge.OneWay && from != to {
			g.adj[to] = append(g.adj[to], arc{edge: rank, to: from, dir: Reverse})
		}
	}

	return g, nil
}
