package am

import (
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/schemalens/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.Newf("server.port cannot be 0 (omit for default port %d)", DefaultServerPort)
	}
	if c.Server.Port != nil && (*c.Server.Port < 0 || *c.Server.Port > 65535) {
		return errors.Newf("server.port must be between 1 and 65535, got %d", *c.Server.Port)
	}

	if c.Seeds.DebounceMS < 0 {
		return errors.Newf("seeds.debounce_ms must be >= 0, got %d", c.Seeds.DebounceMS)
	}
	if c.Seeds.Watch && c.Seeds.Dir == "" {
		return errors.New("seeds.watch requires seeds.dir")
	}
	if c.Seeds.FormatConstraint != "" {
		if _, err := semver.NewConstraint(c.Seeds.FormatConstraint); err != nil {
			return errors.Wrapf(err, "seeds.format_constraint %q is not a semver constraint", c.Seeds.FormatConstraint)
		}
	}

	// 0 = no cap
	if c.Resolver.MaxTables < 0 {
		return errors.Newf("resolver.max_tables must be >= 0, got %d", c.Resolver.MaxTables)
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}
