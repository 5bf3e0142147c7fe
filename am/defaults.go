package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/teranos/schemalens/internal/util"
	"github.com/teranos/schemalens/version"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "schemalens.db")

	v.SetDefault("seeds.dir", "")
	v.SetDefault("seeds.watch", false)
	v.SetDefault("seeds.debounce_ms", 500)
	v.SetDefault("seeds.format_constraint", version.SeedFormatConstraint)

	v.SetDefault("resolver.default_intent", "")
	v.SetDefault("resolver.max_tables", 16)
	v.SetDefault("resolver.strict_tables", true)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", defaultAllowedOrigins())

	v.SetDefault("mcp.name", "schemalens")

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

func defaultAllowedOrigins() []string {
	return []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	}
}

// BindEnvVars binds keys whose env names don't follow the automatic mapping
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "SCHEMALENS_DATABASE_PATH", "SCHEMALENS_DB")
	v.BindEnv("seeds.dir", "SCHEMALENS_SEEDS_DIR", "SCHEMALENS_SEEDS")
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "schemalens.db"
	}
	return c.Database.Path
}

// GetServerPort returns the configured port, or DefaultServerPort
func (c *Config) GetServerPort() int {
	return util.ValueOr(c.Server.Port, DefaultServerPort)
}

// GetServerAllowedOrigins returns the allowed websocket origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return defaultAllowedOrigins()
	}
	return c.Server.AllowedOrigins
}

// GetSeedDebounce returns the seed watcher quiet period
func (c *Config) GetSeedDebounce() time.Duration {
	if c.Seeds.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Seeds.DebounceMS) * time.Millisecond
}

// GetMCPName returns the name the MCP server advertises
func (c *Config) GetMCPName() string {
	if c.MCP.Name == "" {
		return "schemalens"
	}
	return c.MCP.Name
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Seeds: {Dir: %s, Watch: %t}, Server: {Port: %d}}",
		c.Database.Path, c.Seeds.Dir, c.Seeds.Watch, c.GetServerPort())
}

// newDefaultsViper returns a Viper holding only the built-in defaults
func newDefaultsViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}
