package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lenstest "github.com/teranos/schemalens/internal/testing"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/seed"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Formats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"graph.yaml": `
format_version: "1.0.0"
nodes:
  - table_name: suppliers
  - table_name: products
edges:
  - from_table: suppliers
    to_table: products
    join_column: supplier_id
    weight: 2
`,
		"graph.toml": `
format_version = "1.0.0"

[[nodes]]
table_name = "suppliers"

[[nodes]]
table_name = "products"

[[edges]]
from_table = "suppliers"
to_table = "products"
join_column = "supplier_id"
weight = 2
`,
		"graph.json": `{
  "format_version": "1.0.0",
  "nodes": [{"table_name": "suppliers"}, {"table_name": "products"}],
  "edges": [{"from_table": "suppliers", "to_table": "products", "join_column": "supplier_id", "weight": 2}]
}`,
	}

	var digests []string
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			recs, err := seed.LoadFile(write(t, dir, name, content))
			require.NoError(t, err)
			assert.Equal(t, "1.0.0", recs.FormatVersion)
			require.Len(t, recs.Nodes, 2)
			require.Len(t, recs.Edges, 1)
			assert.Equal(t, 2, recs.Edges[0].Weight)
			digests = append(digests, recs.Digest())
		})
	}

	require.Len(t, digests, 3)
	assert.Equal(t, digests[0], digests[1])
	assert.Equal(t, digests[1], digests[2])
}

func TestLoadFile_RejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"typo.yaml": "nodes:\n  - table_nme: suppliers\n",
		"typo.toml": "[[nodes]]\ntable_nme = \"suppliers\"\n",
		"typo.json": `{"nodes": [{"table_nme": "suppliers"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := seed.LoadFile(write(t, dir, name, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_EmptyYAML(t *testing.T) {
	recs, err := seed.LoadFile(write(t, t.TempDir(), "empty.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, recs.Nodes)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := seed.LoadFile(write(t, t.TempDir(), "seed.csv", "a,b"))
	assert.Error(t, err)
}

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		constraint string
		wantErr    bool
	}{
		{name: "unversioned accepted", version: ""},
		{name: "default constraint accepts 1.x", version: "1.4.2"},
		{name: "default constraint rejects 2.x", version: "2.0.0", wantErr: true},
		{name: "explicit constraint", version: "2.1.0", constraint: ">=2.0, <3.0"},
		{name: "garbage version", version: "one", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := seed.CheckFormat(&seed.Records{FormatVersion: tt.version}, tt.constraint, "x.yaml")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, lenserr.ErrIncompatibleSeedFormat)
			le, ok := lenserr.As(err)
			require.True(t, ok)
			assert.Equal(t, "x.yaml", le.Get(lenserr.KeyFile))
		})
	}
}

func TestLoadDir_MergesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "20_more.yaml", "nodes:\n  - table_name: products\n")
	write(t, dir, "10_base.json", `{"nodes": [{"table_name": "suppliers"}]}`)
	write(t, dir, "30_last.toml", "[[nodes]]\ntable_name = \"product_defects\"\n")
	write(t, dir, "README.md", "not a seed")
	write(t, dir, ".hidden.yaml", "nodes:\n  - table_name: ghost\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	recs, err := seed.LoadDir(context.Background(), dir, "")
	require.NoError(t, err)

	var names []string
	for _, n := range recs.Nodes {
		names = append(names, n.TableName)
	}
	assert.Equal(t, []string{"suppliers", "products", "product_defects"}, names)
}

func TestLoadDir_FixtureRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lenstest.WriteSeedFile(t, dir, "manufacturing.yaml", lenstest.ManufacturingRecords())

	recs, err := seed.LoadDir(context.Background(), dir, seed.DefaultFormatConstraint)
	require.NoError(t, err)
	assert.Equal(t, lenstest.ManufacturingRecords().Digest(), recs.Digest())
}

func TestLoadDir_IncompatibleFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.yaml", "format_version: \"1.0.0\"\n")
	write(t, dir, "b.yaml", "format_version: \"3.0.0\"\n")

	_, err := seed.LoadDir(context.Background(), dir, "^1.0")
	assert.ErrorIs(t, err, lenserr.ErrIncompatibleSeedFormat)
}

func TestLoadDir_MissingDir(t *testing.T) {
	_, err := seed.LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, err)
}

func TestDigest_OrderIndependent(t *testing.T) {
	a := lenstest.ManufacturingRecords()
	b := lenstest.ManufacturingRecords()
	for i, j := 0, len(b.Edges)-1; i < j; i, j = i+1, j-1 {
		b.Edges[i], b.Edges[j] = b.Edges[j], b.Edges[i]
	}
	for i, j := 0, len(b.Concepts)-1; i < j; i, j = i+1, j-1 {
		b.Concepts[i], b.Concepts[j] = b.Concepts[j], b.Concepts[i]
	}
	assert.Equal(t, a.Digest(), b.Digest())

	b.Edges[0].Weight++
	assert.NotEqual(t, a.Digest(), b.Digest())
}

func TestDigest_ParallelEdgesOrderIndependent(t *testing.T) {
	first := seed.SchemaEdge{FromTable: "orders", ToTable: "customers", JoinColumn: "customer_id", Weight: 1, Context: "billing"}
	second := first
	second.Context = "shipping"
	second.NaturalLanguageAlias = "ship-to customer"

	a := &seed.Records{FormatVersion: "1.0.0", Edges: []seed.SchemaEdge{first, second}}
	b := &seed.Records{FormatVersion: "1.0.0", Edges: []seed.SchemaEdge{second, first}}
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, a.Canonical().Edges, b.Canonical().Edges)
	assert.Equal(t, "billing", b.Canonical().Edges[0].Context)
}

func TestEdgeLess_TotalOnDescriptiveFields(t *testing.T) {
	base := seed.SchemaEdge{FromTable: "a", ToTable: "b", JoinColumn: "id", Weight: 1}
	for _, mutate := range []func(*seed.SchemaEdge){
		func(e *seed.SchemaEdge) { e.JoinColumnDescription = "x" },
		func(e *seed.SchemaEdge) { e.NaturalLanguageAlias = "x" },
		func(e *seed.SchemaEdge) { e.Example = "x" },
		func(e *seed.SchemaEdge) { e.Context = "x" },
	} {
		other := base
		mutate(&other)
		assert.True(t, seed.EdgeLess(base, other))
		assert.False(t, seed.EdgeLess(other, base))
	}
	assert.False(t, seed.EdgeLess(base, base))
}

func TestMergeAndCounts(t *testing.T) {
	r := &seed.Records{FormatVersion: "1.0.0"}
	r.Merge(&seed.Records{FormatVersion: "1.1.0", Nodes: []seed.SchemaNode{{TableName: "a"}}})
	r.Merge(nil)
	r.Merge(lenstest.ManufacturingRecords())

	assert.Equal(t, "1.0.0", r.FormatVersion)
	counts := r.Counts()
	assert.Equal(t, 1+len(lenstest.ManufacturingRecords().Nodes), counts["nodes"])
	assert.Equal(t, len(lenstest.ManufacturingRecords().Intents), counts["intents"])
}

func TestIsSeedFile(t *testing.T) {
	assert.True(t, seed.IsSeedFile("a/b/concepts.YAML"))
	assert.True(t, seed.IsSeedFile("graph.yml"))
	assert.True(t, seed.IsSeedFile("graph.toml"))
	assert.True(t, seed.IsSeedFile("graph.json"))
	assert.False(t, seed.IsSeedFile("graph.txt"))
	assert.False(t, seed.IsSeedFile("lens.toml.back1"))
}
