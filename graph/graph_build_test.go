package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/seed"
)

func nodes(names ...string) []seed.SchemaNode {
	out := make([]seed.SchemaNode, len(names))
	for i, n := range names {
		out[i] = seed.SchemaNode{TableName: n}
	}
	return out
}

func edge(from, to, column string, weight int) seed.SchemaEdge {
	return seed.SchemaEdge{FromTable: from, ToTable: to, JoinColumn: column, Weight: weight}
}

func TestBuildInternsTablesInNameOrder(t *testing.T) {
	g, err := Build(nodes("suppliers", "daily_deliveries", "archive_logs"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"archive_logs", "daily_deliveries", "suppliers"}, g.Tables())
	id, ok := g.ID("archive_logs")
	require.True(t, ok)
	assert.Equal(t, TableID(0), id)
}

func TestBuildRejectsDuplicateNode(t *testing.T) {
	_, err := Build(nodes("suppliers", "suppliers"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lenserr.ErrDuplicateNode))

	e, ok := lenserr.As(err)
	require.True(t, ok)
	assert.Equal(t, "suppliers", e.Get(lenserr.KeyTable))
}

func TestBuildRejectsDanglingEdge(t *testing.T) {
	_, err := Build(nodes("suppliers"), []seed.SchemaEdge{edge("suppliers", "ghost", "id", 1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, lenserr.ErrDanglingEdgeReference))

	e, _ := lenserr.As(err)
	assert.Equal(t, "ghost", e.Get(lenserr.KeyTable))
}

func TestBuildRejectsNegativeWeight(t *testing.T) {
	_, err := Build(nodes("a", "b"), []seed.SchemaEdge{edge("a", "b", "id", -3)})
	assert.True(t, errors.Is(err, lenserr.ErrInvalidJoinCost))
}

func TestBuildDefaultsZeroWeight(t *testing.T) {
	g, err := Build(nodes("a", "b"), []seed.SchemaEdge{edge("a", "b", "id", 0)})
	require.NoError(t, err)
	require.Len(t, g.Edges(), 1)
	assert.Equal(t, DefaultJoinCost, g.Edges()[0].Cost)
}

func TestBuildDetectsOneWayRelationships(t *testing.T) {
	e := edge("orders", "audit", "order_id", 1)
	e.RelationshipType = "Depends_On"
	g, err := Build(nodes("orders", "audit"), []seed.SchemaEdge{e, edge("audit", "orders", "audit_id", 1)})
	require.NoError(t, err)

	stats := g.Stats()
	assert.Equal(t, 2, stats.TotalNodes)
	assert.Equal(t, 2, stats.TotalEdges)
	assert.Equal(t, 1, stats.OneWay)
}

func TestBuildIsOrderIndependent(t *testing.T) {
	es := []seed.SchemaEdge{
		edge("b", "c", "id", 2),
		edge("a", "b", "id", 1),
		edge("a", "c", "x", 5),
	}
	g1, err := Build(nodes("a", "b", "c"), es)
	require.NoError(t, err)

	reversed := []seed.SchemaEdge{es[2], es[1], es[0]}
	g2, err := Build(nodes("c", "b", "a"), reversed)
	require.NoError(t, err)

	assert.Equal(t, g1.Edges(), g2.Edges())
	assert.Equal(t, g1.Tables(), g2.Tables())
}

func TestBuildParallelEdgesOrderIndependent(t *testing.T) {
	first := edge("a", "b", "id", 1)
	first.Context = "billing"
	second := edge("a", "b", "id", 1)
	second.Context = "shipping"

	g1, err := Build(nodes("a", "b"), []seed.SchemaEdge{first, second})
	require.NoError(t, err)
	g2, err := Build(nodes("a", "b"), []seed.SchemaEdge{second, first})
	require.NoError(t, err)

	assert.Equal(t, g1.Edges(), g2.Edges())
	assert.Equal(t, "billing", g1.Edges()[0].Context)

	path, err := g2.ShortestPath("a", "b")
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "billing", path[0].Context)
}
