// Package snapshot bundles the schema graph and the rules registries into one
// immutable, fully validated unit and publishes it atomically.
//
// Readers call Holder.Current once per request and use that snapshot for the
// whole request, so a concurrent swap can never tear a result.
package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/teranos/schemalens/concept"
	"github.com/teranos/schemalens/engine"
	"github.com/teranos/schemalens/graph"
	"github.com/teranos/schemalens/intent"
	"github.com/teranos/schemalens/joinpath"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/perspective"
	"github.com/teranos/schemalens/seed"
)

// Snapshot is an immutable view of schema and rules. Safe for concurrent use.
type Snapshot struct {
	ID      string
	Version uint64 // assigned by Holder.Swap; zero until published
	BuiltAt time.Time
	Digest  string

	Graph        *graph.Graph
	Concepts     *concept.Registry
	Perspectives *perspective.Registry
	Intents      *intent.Registry
	Engine       *engine.Engine
	Joins        *joinpath.Resolver

	counts map[string]int
}

// Options tunes snapshot construction.
type Options struct {
	// StrictTables rejects bindings whose table is missing from the graph.
	StrictTables bool
}

// Build validates records and assembles a snapshot. Any error rejects the
// whole build; no partial snapshot is ever returned.
func Build(recs *seed.Records, opts Options) (*Snapshot, error) {
	g, err := graph.Build(recs.Nodes, recs.Edges)
	if err != nil {
		return nil, err
	}
	concepts, err := concept.Load(recs.Concepts, recs.ConceptBindings)
	if err != nil {
		return nil, err
	}
	if opts.StrictTables {
		for _, ref := range concepts.Fields() {
			if !g.HasTable(ref.Table) {
				return nil, lenserr.New(lenserr.KindUnknownTable,
					"binding %s names a table missing from the schema graph", ref).
					With(lenserr.KeyTable, ref.Table).
					With(lenserr.KeyField, ref.Field)
			}
		}
	}
	perspectives, err := perspective.Load(recs.Perspectives, recs.PerspectiveWeights, concepts)
	if err != nil {
		return nil, err
	}
	intents, err := intent.Load(recs.Intents, recs.IntentConceptWeights, recs.IntentPerspectiveWeights,
		recs.IntentQueryBindings, concepts, perspectives)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ID:           uuid.NewString(),
		BuiltAt:      time.Now().UTC(),
		Digest:       recs.Digest(),
		Graph:        g,
		Concepts:     concepts,
		Perspectives: perspectives,
		Intents:      intents,
		Engine:       engine.New(concepts, perspectives, intents),
		Joins:        joinpath.NewResolver(g, nil),
		counts:       recs.Counts(),
	}, nil
}

// Info is the public summary of a snapshot.
type Info struct {
	ID      string         `json:"id"`
	Version uint64         `json:"version"`
	BuiltAt time.Time      `json:"built_at"`
	Digest  string         `json:"digest"`
	Counts  map[string]int `json:"counts"`
}

// Info summarises the snapshot.
func (s *Snapshot) Info() Info {
	counts := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		counts[k] = v
	}
	return Info{ID: s.ID, Version: s.Version, BuiltAt: s.BuiltAt, Digest: s.Digest, Counts: counts}
}
