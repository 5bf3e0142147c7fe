package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/schemalens/errors"
)

// EnvPrefix prefixes every environment override (SCHEMALENS_SEEDS_DIR, ...).
const EnvPrefix = "SCHEMALENS"

var (
	loadMu        sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper

	// ConfigSources records which file supplied each key during the last load.
	ConfigSources = map[string]SourceInfo{}

	// systemConfigPath is a variable so tests can point it elsewhere.
	systemConfigPath = "/etc/schemalens/" + ConfigFileName
)

// Load reads the schemalens configuration using Viper
func Load() (*Config, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	loadMu.Lock()
	defer loadMu.Unlock()
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path, over defaults
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Defaults only; no environment binding for an explicit file
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	loadMu.Lock()
	defer loadMu.Unlock()
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// initViper initializes Viper with configuration sources and defaults.
// Callers hold loadMu.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)

	SetDefaults(v)

	// Precedence: system -> user -> project -> env vars
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// findProjectConfig walks up from the working directory looking for lens.toml
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// UserConfigPath returns ~/.schemalens/lens.toml, or "" without a home dir
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".schemalens", ConfigFileName)
}

// CandidatePaths lists every config file consulted, lowest precedence first
func CandidatePaths() []SourceInfo {
	paths := []SourceInfo{{Source: SourceSystem, Path: systemConfigPath}}
	if user := UserConfigPath(); user != "" {
		paths = append(paths, SourceInfo{Source: SourceUser, Path: user})
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, SourceInfo{Source: SourceProject, Path: project})
	}
	return paths
}

// mergeConfigFiles merges configuration files in precedence order and
// records the file each key came from
func mergeConfigFiles(v *viper.Viper) {
	for _, candidate := range CandidatePaths() {
		if _, err := os.Stat(candidate.Path); err != nil {
			continue
		}
		tempViper := viper.New()
		tempViper.SetConfigFile(candidate.Path)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			continue
		}
		// MergeConfigMap keeps env vars above file values; Set would not.
		if err := v.MergeConfigMap(tempViper.AllSettings()); err != nil {
			continue
		}
		for _, key := range tempViper.AllKeys() {
			ConfigSources[key] = candidate
		}
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetBool returns a configuration value as bool using dot notation
func GetBool(key string) bool {
	return GetViper().GetBool(key)
}

// GetInt returns a configuration value as int using dot notation
func GetInt(key string) int {
	return GetViper().GetInt(key)
}
