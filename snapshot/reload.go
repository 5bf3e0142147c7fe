package snapshot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/seed"
)

// Source produces the records a snapshot is built from.
type Source interface {
	LoadRecords(ctx context.Context) (*seed.Records, error)
	Describe() string
}

// DirSource reads seed documents from a directory.
type DirSource struct {
	Dir              string
	FormatConstraint string
}

// LoadRecords implements Source.
func (d DirSource) LoadRecords(ctx context.Context) (*seed.Records, error) {
	return seed.LoadDir(ctx, d.Dir, d.FormatConstraint)
}

// Describe implements Source.
func (d DirSource) Describe() string {
	return "dir:" + d.Dir
}

// Reloader rebuilds snapshots from a source and publishes them. A failed
// rebuild leaves the active snapshot in place.
type Reloader struct {
	holder *Holder
	source Source
	opts   Options
	logger *zap.SugaredLogger

	mu sync.Mutex // serialises rebuilds
}

// NewReloader returns a reloader publishing into holder.
func NewReloader(holder *Holder, source Source, opts Options, log *zap.SugaredLogger) *Reloader {
	return &Reloader{
		holder: holder,
		source: source,
		opts:   opts,
		logger: logger.OrNop(log).Named("snapshot.reload"),
	}
}

// Reload builds a snapshot from the source and swaps it in.
func (r *Reloader) Reload(ctx context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	recs, err := r.source.LoadRecords(ctx)
	if err != nil {
		r.logger.Errorw("Failed to load records; keeping active snapshot",
			logger.FieldPath, r.source.Describe(),
			logger.FieldError, err,
		)
		return nil, errors.Wrapf(err, "load records from %s", r.source.Describe())
	}

	if cur := r.holder.Current(); cur != nil && cur.Digest == recs.Digest() {
		r.logger.Debugw("Records unchanged; skipping rebuild",
			logger.FieldDigest, cur.Digest,
			logger.FieldVersion, cur.Version,
		)
		return cur, nil
	}

	s, err := Build(recs, r.opts)
	if err != nil {
		fields := []interface{}{logger.FieldPath, r.source.Describe()}
		if le, ok := lenserr.As(err); ok {
			fields = append(fields, le.ToLogFields()...)
		} else {
			fields = append(fields, logger.FieldError, err)
		}
		r.logger.Errorw("Snapshot build rejected; keeping active snapshot", fields...)
		return nil, err
	}

	published, previous := r.holder.Swap(s)
	prevVersion := uint64(0)
	if previous != nil {
		prevVersion = previous.Version
	}
	logger.SnapshotInfow("Snapshot swapped",
		logger.FieldSnapshotID, published.ID,
		logger.FieldVersion, published.Version,
		"previous_version", prevVersion,
		logger.FieldDigest, published.Digest,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return published, nil
}

// Source returns the source being reloaded.
func (r *Reloader) Source() Source {
	return r.source
}
