package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/version"
)

// DefaultFormatConstraint is the range this build understands.
const DefaultFormatConstraint = version.SeedFormatConstraint

// maxParallelParse bounds concurrent file parsing in LoadDir.
const maxParallelParse = 8

// Extensions lists the seed file suffixes LoadDir picks up.
var Extensions = []string{".yaml", ".yml", ".toml", ".json"}

// IsSeedFile reports whether path has a seed document extension.
func IsSeedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile reads one seed document. The decoder is picked by extension and
// unknown keys are rejected so typos in hand-curated seeds surface early.
func LoadFile(path string) (*Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read seed file %s", path)
	}

	var recs Records
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&recs); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(err, "parse YAML seed %s", path)
		}
	case ".toml":
		meta, err := toml.Decode(string(data), &recs)
		if err != nil {
			return nil, errors.Wrapf(err, "parse TOML seed %s", path)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Newf("unknown keys in TOML seed %s: %v", path, undecoded)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&recs); err != nil {
			return nil, errors.Wrapf(err, "parse JSON seed %s", path)
		}
	default:
		return nil, errors.Newf("unsupported seed file extension: %s", path)
	}
	return &recs, nil
}

// CheckFormat verifies a document's format_version against a semver
// constraint. Documents without a version are accepted.
func CheckFormat(recs *Records, constraint, file string) error {
	if recs.FormatVersion == "" {
		return nil
	}
	if constraint == "" {
		constraint = DefaultFormatConstraint
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "invalid seed format constraint %q", constraint)
	}
	v, err := semver.NewVersion(recs.FormatVersion)
	if err != nil {
		return lenserr.Wrap(lenserr.KindIncompatibleSeedFormat, err,
			"format_version %q is not a semantic version", recs.FormatVersion).
			With(lenserr.KeyFile, file)
	}
	if !c.Check(v) {
		return lenserr.New(lenserr.KindIncompatibleSeedFormat,
			"format_version %s does not satisfy %s", v, constraint).
			With(lenserr.KeyFile, file).
			With(lenserr.KeyValue, recs.FormatVersion)
	}
	return nil
}

// LoadDir reads every seed file directly inside dir, checks each format
// version, and merges the documents in file name order. Files are parsed in
// parallel; the merge order does not depend on which finishes first.
func LoadDir(ctx context.Context, dir, constraint string) (*Records, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	docs := make([]*Records, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelParse)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := LoadFile(file)
			if err != nil {
				return err
			}
			if err := CheckFormat(recs, constraint, file); err != nil {
				return err
			}
			docs[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Records{}
	for _, d := range docs {
		merged.Merge(d)
	}
	return merged, nil
}

// ListFiles returns the seed files in dir sorted by name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read seed directory %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !IsSeedFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
