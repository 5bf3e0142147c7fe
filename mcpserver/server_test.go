package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	lenstest "github.com/teranos/schemalens/internal/testing"
	"github.com/teranos/schemalens/snapshot"
)

func newTestMCP(t *testing.T, loaded bool, opts Options) *MCPServer {
	t.Helper()
	holder := snapshot.NewHolder()
	if loaded {
		snap, err := snapshot.Build(lenstest.ManufacturingRecords(), snapshot.Options{StrictTables: true})
		require.NoError(t, err)
		holder.Swap(snap)
	}
	return New(holder, opts, zaptest.NewLogger(t).Sugar())
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	switch tc := result.Content[0].(type) {
	case mcp.TextContent:
		return tc.Text, result.IsError
	case *mcp.TextContent:
		return tc.Text, result.IsError
	}
	t.Fatalf("expected TextContent, got %T", result.Content[0])
	return "", false
}

func TestResolveSchema(t *testing.T) {
	s := newTestMCP(t, true, Options{})

	text, isErr := call(t, s.handleResolve, map[string]any{
		"intent": "defect_cost_analysis",
		"tables": "suppliers, product_defects",
		"fields": "product_defects.severity",
	})
	require.False(t, isErr, text)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, "defect_cost_analysis", out["intent"])
	assert.EqualValues(t, 3, out["total_cost"])
	bindings := out["bindings"].([]interface{})
	require.Len(t, bindings, 1)
	assert.Equal(t, "defect_severity_cost",
		bindings[0].(map[string]interface{})["concept"].(map[string]interface{})["name"])
}

func TestResolveSchema_DefaultIntent(t *testing.T) {
	s := newTestMCP(t, true, Options{DefaultIntent: "defect_quality_trending"})

	text, isErr := call(t, s.handleResolve, map[string]any{
		"tables": "product_defects",
		"fields": "product_defects.severity",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"intent": "defect_quality_trending"`)
}

func TestResolveSchema_Errors(t *testing.T) {
	s := newTestMCP(t, true, Options{MaxTables: 3})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing tables", map[string]any{"intent": "defect_cost_analysis"}, "tables"},
		{"no intent", map[string]any{"tables": "suppliers"}, "intent is required"},
		{"bad field", map[string]any{"intent": "defect_cost_analysis", "tables": "suppliers", "fields": "severity"}, "severity"},
		{"unknown intent", map[string]any{"intent": "nope", "tables": "suppliers"}, "UnknownIntent"},
		{"no path", map[string]any{"intent": "defect_cost_analysis", "tables": "suppliers,archive_logs"}, "NoPathFound"},
		{"too many tables", map[string]any{"intent": "defect_cost_analysis", "tables": "suppliers,products,product_defects,daily_deliveries"}, "limit is 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, s.handleResolve, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestJoinPath(t *testing.T) {
	s := newTestMCP(t, true, Options{})

	text, isErr := call(t, s.handleJoinPath, map[string]any{"tables": "suppliers,product_defects"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "total cost 3")
	assert.Contains(t, text, "1. suppliers JOIN daily_deliveries")

	text, isErr = call(t, s.handleJoinPath, map[string]any{"tables": "products"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "No joins needed")
}

func TestListIntents(t *testing.T) {
	s := newTestMCP(t, true, Options{})

	text, isErr := call(t, s.handleListIntents, map[string]any{})
	require.False(t, isErr, text)
	assert.Contains(t, text, "- defect_cost_analysis [finance]")
	assert.Contains(t, text, "example: What did defects cost us per supplier last quarter?")
}

func TestNoSnapshot(t *testing.T) {
	s := newTestMCP(t, false, Options{})

	text, isErr := call(t, s.handleListIntents, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "no active snapshot")
	assert.Contains(t, text, "hint:")

	_, isErr = call(t, s.handleJoinPath, map[string]any{"tables": "suppliers"})
	assert.True(t, isErr)
}
