// Package version reports build information and the seed format this
// binary understands.
package version

import (
	"fmt"
	"runtime"
)

// Build information, set at build time via ldflags:
//
//	-X github.com/teranos/schemalens/version.Version=v0.3.0
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// SeedFormatConstraint is the semver range of seed format_version values
// this build can load.
const SeedFormatConstraint = "^1.0"

// Info contains version and build information
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	SeedFormat string `json:"seed_format"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		SeedFormat: SeedFormatConstraint,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("schemalens %s (commit %s, built %s, seed format %s)",
		i.Version, i.Short(), i.BuildTime, i.SeedFormat)
}

// Short returns the abbreviated commit hash
func (i Info) Short() string {
	if len(i.CommitHash) > 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
