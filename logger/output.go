package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - Resolution results and errors with hints
//	1 (-v)      - + Snapshot build summaries, reloads, server startup
//	2 (-vv)     - + Per-field resolution reasons, timing, config loaded
//	3 (-vvv)    - + SQL statements, path-search expansion
//	4 (-vvvv)   - + Full seed records and result dumps

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Resolution results, command output
	OutputErrors                        // Errors with hints

	// Level 1 (-v) - Informational
	OutputSnapshot // Snapshot build and swap summaries
	OutputStartup  // Server and watcher startup

	// Level 2 (-vv) - Detailed
	OutputResolution // Per-field resolution reasons
	OutputTiming     // Operation timing
	OutputConfig     // Config values loaded/applied

	// Level 3 (-vvv) - Debug
	OutputSQLQueries // Individual SQL statements executed
	OutputPathSearch // Dijkstra frontier expansion

	// Level 4 (-vvvv) - Full dump
	OutputDataDump // Full data structure contents
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults: VerbosityUser,
	OutputErrors:  VerbosityUser,

	OutputSnapshot: VerbosityInfo,
	OutputStartup:  VerbosityInfo,

	OutputResolution: VerbosityDebug,
	OutputTiming:     VerbosityDebug,
	OutputConfig:     VerbosityDebug,

	OutputSQLQueries: VerbosityTrace,
	OutputPathSearch: VerbosityTrace,

	OutputDataDump: VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// categoryNames provides human-readable names for output categories
var categoryNames = map[OutputCategory]string{
	OutputResults:    "results",
	OutputErrors:     "errors",
	OutputSnapshot:   "snapshot",
	OutputStartup:    "startup",
	OutputResolution: "resolution",
	OutputTiming:     "timing",
	OutputConfig:     "config",
	OutputSQLQueries: "sql",
	OutputPathSearch: "path-search",
	OutputDataDump:   "data-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
