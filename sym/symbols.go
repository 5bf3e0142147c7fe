// Package sym defines canonical symbols for schemalens segments.
// These symbols are stable across CLI output, logs, and documentation.
package sym

// Glyph string constants, one per segment of the engine.
const (
	Graph       = "⋈" // schema graph and join paths
	Join        = "⨝" // join plan output
	Concept     = "◇" // concept registry
	Perspective = "◎" // perspective registry
	Intent      = "➹" // intent registry
	Snapshot    = "≡" // snapshot builds and swaps
	DB          = "⊔" // metadata store
	Config      = "⚙" // configuration
)

// Names maps each glyph to its segment name.
var Names = map[string]string{
	Graph:       "graph",
	Join:        "join",
	Concept:     "concept",
	Perspective: "perspective",
	Intent:      "intent",
	Snapshot:    "snapshot",
	DB:          "db",
	Config:      "config",
}

// Name returns the segment name for a glyph, or "" for unknown glyphs.
func Name(glyph string) string {
	return Names[glyph]
}
