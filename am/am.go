package am

// Config is the schemalens configuration ("I am").
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database" json:"database" yaml:"database"`
	Seeds    SeedsConfig    `mapstructure:"seeds" toml:"seeds" json:"seeds" yaml:"seeds"`
	Resolver ResolverConfig `mapstructure:"resolver" toml:"resolver" json:"resolver" yaml:"resolver"`
	Server   ServerConfig   `mapstructure:"server" toml:"server" json:"server" yaml:"server"`
	MCP      MCPConfig      `mapstructure:"mcp" toml:"mcp" json:"mcp" yaml:"mcp"`
	Log      LogConfig      `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// DatabaseConfig configures the SQLite metadata store
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// SeedsConfig configures where seed documents are read from
type SeedsConfig struct {
	Dir              string `mapstructure:"dir" toml:"dir" json:"dir" yaml:"dir"`                                                         // Seed directory; empty = load from the metadata store
	Watch            bool   `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`                                                 // Rebuild the snapshot when seed files change
	DebounceMS       int    `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`                         // Quiet period before a rebuild
	FormatConstraint string `mapstructure:"format_constraint" toml:"format_constraint" json:"format_constraint" yaml:"format_constraint"` // Semver constraint on format_version
}

// ResolverConfig configures query resolution
type ResolverConfig struct {
	DefaultIntent string `mapstructure:"default_intent" toml:"default_intent" json:"default_intent" yaml:"default_intent"`
	MaxTables     int    `mapstructure:"max_tables" toml:"max_tables" json:"max_tables" yaml:"max_tables"`             // 0 = no cap
	StrictTables  bool   `mapstructure:"strict_tables" toml:"strict_tables" json:"strict_tables" yaml:"strict_tables"` // Reject bindings to tables missing from the graph
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port           *int     `mapstructure:"port" toml:"port" json:"port" yaml:"port"` // nil = DefaultServerPort, 0 is invalid
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins" json:"allowed_origins" yaml:"allowed_origins"`
}

// MCPConfig configures the MCP stdio server
type MCPConfig struct {
	Name string `mapstructure:"name" toml:"name" json:"name" yaml:"name"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity" json:"verbosity" yaml:"verbosity"`
}

// Server port constants
const (
	DefaultServerPort = 8760
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// ConfigFileName is the name of every schemalens config file.
const ConfigFileName = "lens.toml"
