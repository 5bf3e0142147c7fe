package graph

import (
	"github.com/teranos/schemalens/lenserr"
)

// Neighbors lists the edges traversable from table, ordered by edge rank and
// then direction. One-way edges appear only at their from_table end.
func (g *Graph) Neighbors(table string) ([]Neighbor, error) {
	id, err := g.lookup(table)
	if err != nil {
		return nil, err
	}
	out := make([]Neighbor, 0, len(g.adj[id]))
	for _, a := range g.adj[id] {
		out = append(out, Neighbor{
			Edge:      g.edges[a.edge],
			Direction: a.dir,
			Table:     g.nodes[a.to].TableName,
		})
	}
	return out, nil
}

// Tables returns every table name in sorted order.
func (g *Graph) Tables() []string {
	names := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		names[i] = n.TableName
	}
	return names
}

// Edges returns a copy of every edge in rank order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Node returns the node for table.
func (g *Graph) Node(table string) (Node, bool) {
	id, ok := g.index[table]
	if !ok {
		return Node{}, false
	}
	return g.nodes[id], true
}

// HasTable reports whether table is part of the graph.
func (g *Graph) HasTable(table string) bool {
	_, ok := g.index[table]
	return ok
}

// ID returns the interned identifier of table.
func (g *Graph) ID(table string) (TableID, bool) {
	id, ok := g.index[table]
	return id, ok
}

// Stats counts nodes and edges.
func (g *Graph) Stats() Stats {
	s := Stats{TotalNodes: len(g.nodes), TotalEdges: len(g.edges)}
	for _, e := range g.edges {
		if e.OneWay {
			s.OneWay++
		}
	}
	return s
}

func (g *Graph) lookup(table string) (TableID, error) {
	id, ok := g.index[table]
	if !ok {
		return 0, lenserr.New(lenserr.KindUnknownTable, "table %q is not in the schema graph", table).
			With(lenserr.KeyTable, table)
	}
	return id, nil
}
