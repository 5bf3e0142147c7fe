package am

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/schemalens/errors"
)

// backupDepth is how many rotated copies (.back1 ... .back3) are kept.
const backupDepth = 3

// createBackup rotates backups (.back1, .back2, .back3) before a config file is overwritten
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	oldest := backupName(configPath, backupDepth)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", oldest)
	}

	for i := backupDepth - 1; i >= 1; i-- {
		from := backupName(configPath, i)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, backupName(configPath, i+1)); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", filepath.Base(from))
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(backupName(configPath, 1), content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

func backupName(configPath string, n int) string {
	return configPath + ".back" + string(rune('0'+n))
}

// isBackupFile reports whether path is a rotated config backup
func isBackupFile(path string) bool {
	ext := filepath.Ext(path)
	for i := 1; i <= backupDepth; i++ {
		if ext == ".back"+string(rune('0'+i)) {
			return true
		}
	}
	return false
}

// MarshalTOML renders cfg as a lens.toml document
func MarshalTOML(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return data, nil
}

// WriteProjectConfig writes cfg to path as TOML, rotating any existing file into backups
func WriteProjectConfig(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "refusing to write invalid config")
	}

	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := createBackup(path); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := MarshalTOML(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}

// DefaultConfig returns the configuration produced by defaults alone
func DefaultConfig() (*Config, error) {
	v := newDefaultsViper()
	return LoadWithViper(v)
}
