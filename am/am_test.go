package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func intPtr(i int) *int { return &i }

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper, no user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Database.Path != "schemalens.db" {
		t.Errorf("expected default database path 'schemalens.db', got %q", cfg.Database.Path)
	}
	if cfg.GetServerPort() != DefaultServerPort {
		t.Errorf("expected default port %d, got %d", DefaultServerPort, cfg.GetServerPort())
	}
	if cfg.Seeds.DebounceMS != 500 {
		t.Errorf("expected default debounce 500, got %d", cfg.Seeds.DebounceMS)
	}
	if !cfg.Resolver.StrictTables {
		t.Error("expected strict_tables to default to true")
	}
	if cfg.Resolver.MaxTables != 16 {
		t.Errorf("expected default max_tables 16, got %d", cfg.Resolver.MaxTables)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "empty config is valid", config: Config{}},
		{name: "port omitted is valid", config: Config{Server: ServerConfig{Port: nil}}},
		{name: "port 0 is invalid", config: Config{Server: ServerConfig{Port: intPtr(0)}}, wantErr: true},
		{name: "port above range is invalid", config: Config{Server: ServerConfig{Port: intPtr(70000)}}, wantErr: true},
		{name: "negative debounce is invalid", config: Config{Seeds: SeedsConfig{DebounceMS: -1}}, wantErr: true},
		{name: "watch without dir is invalid", config: Config{Seeds: SeedsConfig{Watch: true}}, wantErr: true},
		{name: "watch with dir is valid", config: Config{Seeds: SeedsConfig{Watch: true, Dir: "seeds"}}},
		{name: "bad format constraint", config: Config{Seeds: SeedsConfig{FormatConstraint: "not-a-version"}}, wantErr: true},
		{name: "zero max tables is valid (no cap)", config: Config{Resolver: ResolverConfig{MaxTables: 0}}},
		{name: "negative max tables is invalid", config: Config{Resolver: ResolverConfig{MaxTables: -2}}, wantErr: true},
		{name: "negative verbosity is invalid", config: Config{Log: LogConfig{Verbosity: -1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `
[seeds]
dir = "/srv/seeds"
watch = true

[resolver]
default_intent = "defect_cost_analysis"
max_tables = 4

[server]
port = 9100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if cfg.Seeds.Dir != "/srv/seeds" || !cfg.Seeds.Watch {
		t.Errorf("seeds section not loaded: %+v", cfg.Seeds)
	}
	if cfg.Resolver.DefaultIntent != "defect_cost_analysis" {
		t.Errorf("expected default intent from file, got %q", cfg.Resolver.DefaultIntent)
	}
	if cfg.Resolver.MaxTables != 4 {
		t.Errorf("expected max_tables 4, got %d", cfg.Resolver.MaxTables)
	}
	if cfg.GetServerPort() != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.GetServerPort())
	}
	// Untouched keys keep their defaults
	if cfg.Database.Path != "schemalens.db" {
		t.Errorf("expected default database path, got %q", cfg.Database.Path)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// isolate points every config location at a temp directory
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	oldSystem := systemConfigPath
	systemConfigPath = filepath.Join(root, "etc", ConfigFileName)
	t.Cleanup(func() {
		systemConfigPath = oldSystem
		Reset()
	})

	t.Setenv("HOME", filepath.Join(root, "home"))
	project := filepath.Join(root, "project")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(project)
	Reset()
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Precedence(t *testing.T) {
	root := isolate(t)

	writeFile(t, filepath.Join(root, "etc", ConfigFileName), `
[database]
path = "/var/lib/schemalens.db"
[resolver]
max_tables = 3
`)
	writeFile(t, filepath.Join(root, "home", ".schemalens", ConfigFileName), `
[resolver]
max_tables = 5
`)
	writeFile(t, filepath.Join(root, "project", ConfigFileName), `
[resolver]
default_intent = "supplier_scorecard"
`)
	t.Setenv("SCHEMALENS_SEEDS_DIR", "/from/env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Path != "/var/lib/schemalens.db" {
		t.Errorf("system value lost: %q", cfg.Database.Path)
	}
	if cfg.Resolver.MaxTables != 5 {
		t.Errorf("user config should override system, got %d", cfg.Resolver.MaxTables)
	}
	if cfg.Resolver.DefaultIntent != "supplier_scorecard" {
		t.Errorf("project config not applied, got %q", cfg.Resolver.DefaultIntent)
	}
	if cfg.Seeds.Dir != "/from/env" {
		t.Errorf("env var should win, got %q", cfg.Seeds.Dir)
	}

	if got := ConfigSources["resolver.max_tables"].Source; got != SourceUser {
		t.Errorf("expected resolver.max_tables from user config, got %q", got)
	}
	if got := ConfigSources["database.path"].Source; got != SourceSystem {
		t.Errorf("expected database.path from system config, got %q", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := isolate(t)
	writeFile(t, filepath.Join(root, "project", ConfigFileName), `
[seeds]
dir = "from-file"
`)
	t.Setenv("SCHEMALENS_SEEDS_DIR", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Seeds.Dir != "from-env" {
		t.Errorf("expected env to override project file, got %q", cfg.Seeds.Dir)
	}
}

func TestGetConfigIntrospection(t *testing.T) {
	root := isolate(t)
	writeFile(t, filepath.Join(root, "project", ConfigFileName), `
[mcp]
name = "lens-dev"
`)
	t.Setenv("SCHEMALENS_LOG_VERBOSITY", "2")

	intro, err := GetConfigIntrospection()
	if err != nil {
		t.Fatalf("GetConfigIntrospection() failed: %v", err)
	}

	byKey := map[string]SettingInfo{}
	for _, s := range intro.Settings {
		byKey[s.Key] = s
	}

	if s := byKey["mcp.name"]; s.Source != SourceProject {
		t.Errorf("mcp.name source = %q, want project", s.Source)
	}
	if s := byKey["log.verbosity"]; s.Source != SourceEnvironment || s.SourcePath != "SCHEMALENS_LOG_VERBOSITY" {
		t.Errorf("log.verbosity source = %q (%s), want environment", s.Source, s.SourcePath)
	}
	if s := byKey["database.path"]; s.Source != SourceDefault {
		t.Errorf("database.path source = %q, want default", s.Source)
	}

	for i := 1; i < len(intro.Settings); i++ {
		if intro.Settings[i-1].Key > intro.Settings[i].Key {
			t.Fatalf("settings not sorted: %s before %s", intro.Settings[i-1].Key, intro.Settings[i].Key)
		}
	}
}

func TestWriteProjectConfig_RotatesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 5; i++ {
		cfg.Resolver.MaxTables = i
		if err := WriteProjectConfig(path, cfg); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if loaded.Resolver.MaxTables != 5 {
		t.Errorf("expected latest write, got max_tables %d", loaded.Resolver.MaxTables)
	}

	for n, want := range map[int]int{1: 4, 2: 3, 3: 2} {
		backup, err := LoadFromFile(backupName(path, n))
		if err != nil {
			t.Fatalf("backup %d unreadable: %v", n, err)
		}
		if backup.Resolver.MaxTables != want {
			t.Errorf("backup %d: max_tables = %d, want %d", n, backup.Resolver.MaxTables, want)
		}
	}
	if _, err := os.Stat(backupName(path, 4)); !os.IsNotExist(err) {
		t.Error("only three backups should be kept")
	}
}

func TestWriteProjectConfig_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := &Config{Server: ServerConfig{Port: intPtr(0)}}
	if err := WriteProjectConfig(path, cfg); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("nothing should have been written")
	}
}

func TestIsBackupFile(t *testing.T) {
	for path, want := range map[string]bool{
		"lens.toml.back1":  true,
		"lens.toml.back3":  true,
		"seeds.yaml.back2": true,
		"lens.toml.back4":  false,
		"lens.toml":        false,
		"concepts.yaml":    false,
	} {
		if got := isBackupFile(path); got != want {
			t.Errorf("isBackupFile(%q) = %v, want %v", path, got, want)
		}
	}
}
