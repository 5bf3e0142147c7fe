package graph

import (
	"container/heap"
	"sort"

	"github.com/teranos/schemalens/lenserr"
)

// ShortestPath returns the cheapest edge sequence from one table to another,
// in traversal order. Among equal-cost paths the lexicographically smallest
// edge sequence wins, comparing edges by (from_table, to_table, join_column).
// A path from a table to itself is empty.
func (g *Graph) ShortestPath(from, to string) ([]Edge, error) {
	path, _, err := g.ShortestPathFrom([]string{from}, to)
	return path, err
}

// ShortestPathFrom returns the cheapest path from any of sources to target,
// together with its cost. Ties between equal-cost paths use the same edge
// order as ShortestPath, then the source table name.
func (g *Graph) ShortestPathFrom(sources []string, target string) ([]Edge, JoinCost, error) {
	dst, err := g.lookup(target)
	if err != nil {
		return nil, 0, err
	}
	srcIDs := make([]TableID, 0, len(sources))
	for _, s := range sources {
		id, err := g.lookup(s)
		if err != nil {
			return nil, 0, err
		}
		if id == dst {
			return []Edge{}, 0, nil
		}
		srcIDs = append(srcIDs, id)
	}
	sort.Slice(srcIDs, func(i, j int) bool { return srcIDs[i] < srcIDs[j] })

	isTarget := make([]bool, len(g.nodes))
	isTarget[dst] = true
	ranks, cost, ok := g.dijkstra(srcIDs, isTarget)
	if !ok {
		from := target
		if len(sources) > 0 {
			from = sources[0]
		}
		return nil, 0, lenserr.New(lenserr.KindNoPathFound,
			"no join path connects %s to %s", from, target).
			With(lenserr.KeyFromTable, from).
			With(lenserr.KeyToTable, target)
	}

	return g.edgesOf(ranks), cost, nil
}

// ShortestPathInto returns the cheapest path from source to whichever of
// targets it reaches first, following arcs forward from source.
func (g *Graph) ShortestPathInto(source string, targets []string) ([]Edge, JoinCost, error) {
	src, err := g.lookup(source)
	if err != nil {
		return nil, 0, err
	}
	isTarget := make([]bool, len(g.nodes))
	for _, t := range targets {
		id, err := g.lookup(t)
		if err != nil {
			return nil, 0, err
		}
		if id == src {
			return []Edge{}, 0, nil
		}
		isTarget[id] = true
	}

	ranks, cost, ok := g.dijkstra([]TableID{src}, isTarget)
	if !ok {
		to := source
		if len(targets) > 0 {
			to = targets[0]
		}
		return nil, 0, lenserr.New(lenserr.KindNoPathFound,
			"no join path connects %s to %s", source, to).
			With(lenserr.KeyFromTable, source).
			With(lenserr.KeyToTable, to)
	}
	return g.edgesOf(ranks), cost, nil
}

// ConnectPath finds the cheapest way to attach table to a join tree. Arcs
// may run from the tree to table or from table into the tree, since the
// resulting join is symmetric either way. The tree-to-table path wins
// unless the other direction is strictly cheaper.
func (g *Graph) ConnectPath(tree []string, table string) ([]Edge, JoinCost, error) {
	out, outCost, outErr := g.ShortestPathFrom(tree, table)
	if outErr != nil && !isNoPath(outErr) {
		return nil, 0, outErr
	}
	in, inCost, inErr := g.ShortestPathInto(table, tree)
	if inErr != nil && !isNoPath(inErr) {
		return nil, 0, inErr
	}

	switch {
	case outErr == nil && (inErr != nil || outCost <= inCost):
		return out, outCost, nil
	case inErr == nil:
		return in, inCost, nil
	}
	return nil, 0, outErr
}

func isNoPath(err error) bool {
	kind, ok := lenserr.KindOf(err)
	return ok && kind == lenserr.KindNoPathFound
}

func (g *Graph) edgesOf(ranks []int) []Edge {
	path := make([]Edge, len(ranks))
	for i, r := range ranks {
		path[i] = g.edges[r]
	}
	return path
}

// label is the best known path to a node.
type label struct {
	cost    JoinCost
	ranks   []int
	source  TableID
	version int
	reached bool
	settled bool
}

// better reports whether (cost, ranks, source) improves on l.
func (l *label) better(cost JoinCost, ranks []int, source TableID) bool {
	if !l.reached || cost < l.cost {
		return true
	}
	if cost > l.cost {
		return false
	}
	if c := compareRanks(ranks, l.ranks); c != 0 {
		return c < 0
	}
	return source < l.source
}

type queueItem struct {
	node    TableID
	cost    JoinCost
	ranks   []int
	source  TableID
	version int
}

// pathQueue is a min-heap on (cost, edge ranks, source, node).
type pathQueue []*queueItem

func (q pathQueue) Len() int { return len(q) }

func (q pathQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	if c := compareRanks(a.ranks, b.ranks); c != 0 {
		return c < 0
	}
	if a.source != b.source {
		return a.source < b.source
	}
	return a.node < b.node
}

func (q pathQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pathQueue) Push(x any) { *q = append(*q, x.(*queueItem)) }

func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// dijkstra runs a multi-source search. Costs are positive, so every
// equal-cost rival of a node's path is relaxed before the node settles, and
// keeping the lexicographically smallest sequence per node yields the
// smallest sequence overall.
func (g *Graph) dijkstra(sources []TableID, isTarget []bool) ([]int, JoinCost, bool) {
	labels := make([]label, len(g.nodes))
	q := &pathQueue{}

	for _, s := range sources {
		if labels[s].reached {
			continue
		}
		labels[s] = label{source: s, reached: true}
		heap.Push(q, &queueItem{node: s, source: s})
	}

	for q.Len() > 0 {
		item := heap.Pop(q).(*queueItem)
		l := &labels[item.node]
		if l.settled || item.version != l.version {
			continue
		}
		l.settled = true
		if isTarget[item.node] {
			return l.ranks, l.cost, true
		}

		for _, a := range g.adj[item.node] {
			next := &labels[a.to]
			if next.settled {
				continue
			}
			cost := l.cost + g.edges[a.edge].Cost
			ranks := make([]int, len(l.ranks)+1)
			copy(ranks, l.ranks)
			ranks[len(l.ranks)] = a.edge
			if !next.better(cost, ranks, l.source) {
				continue
			}
			next.cost = cost
			next.ranks = ranks
			next.source = l.source
			next.reached = true
			next.version++
			heap.Push(q, &queueItem{
				node:    a.to,
				cost:    cost,
				ranks:   ranks,
				source:  l.source,
				version: next.version,
			})
		}
	}
	return nil, 0, false
}
