package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/seed"
)

func TestNeighborsOrderedByEdgeThenDirection(t *testing.T) {
	g, err := Build(nodes("a", "b", "c"), []seed.SchemaEdge{
		edge("c", "b", "id", 1),
		edge("b", "a", "id", 1),
		edge("a", "b", "id", 1),
	})
	require.NoError(t, err)

	ns, err := g.Neighbors("b")
	require.NoError(t, err)
	require.Len(t, ns, 3)

	assert.Equal(t, "a", ns[0].Edge.FromTable)
	assert.Equal(t, Reverse, ns[0].Direction)
	assert.Equal(t, "a", ns[0].Table)

	assert.Equal(t, "b", ns[1].Edge.FromTable)
	assert.Equal(t, Forward, ns[1].Direction)

	assert.Equal(t, "c", ns[2].Edge.FromTable)
	assert.Equal(t, Reverse, ns[2].Direction)
	assert.Equal(t, "c", ns[2].Table)
}

func TestNeighborsHidesReverseOfOneWayEdge(t *testing.T) {
	e := edge("orders", "audit", "order_id", 1)
	e.RelationshipType = "directed"
	g, err := Build(nodes("orders", "audit"), []seed.SchemaEdge{e})
	require.NoError(t, err)

	ns, err := g.Neighbors("audit")
	require.NoError(t, err)
	assert.Empty(t, ns)

	ns, err = g.Neighbors("orders")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, Forward, ns[0].Direction)
}

func TestNeighborsUnknownTable(t *testing.T) {
	g, err := Build(nodes("a"), nil)
	require.NoError(t, err)

	_, err = g.Neighbors("missing")
	assert.True(t, errors.Is(err, lenserr.ErrUnknownTable))
}

func TestAccessors(t *testing.T) {
	g, err := Build([]seed.SchemaNode{{TableName: "suppliers", TableType: "dimension", Description: "vendors"}}, nil)
	require.NoError(t, err)

	assert.True(t, g.HasTable("suppliers"))
	assert.False(t, g.HasTable("customers"))

	n, ok := g.Node("suppliers")
	require.True(t, ok)
	assert.Equal(t, "dimension", n.TableType)
	assert.Equal(t, "vendors", n.Description)

	edges := g.Edges()
	assert.Empty(t, edges)
}

func TestDirectionText(t *testing.T) {
	text, err := Reverse.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "reverse", string(text))
	assert.Equal(t, "forward", Forward.String())
}
