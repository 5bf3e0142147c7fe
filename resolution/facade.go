// Package resolution combines field resolution and join planning into one
// result per query.
package resolution

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/schemalens/concept"
	"github.com/teranos/schemalens/engine"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/graph"
	"github.com/teranos/schemalens/intent"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/snapshot"
)

// Provider hands out the active snapshot.
type Provider interface {
	Current() *snapshot.Snapshot
}

// Query is one resolution request.
type Query struct {
	Intent string             `json:"intent"`
	Tables []string           `json:"tables"`
	Fields []concept.FieldRef `json:"fields"`
}

// Result is the structured answer handed to downstream SQL generation.
type Result struct {
	SnapshotID      string                               `json:"snapshot_id"`
	SnapshotVersion uint64                               `json:"snapshot_version"`
	Intent          string                               `json:"intent"`
	JoinPlan        []graph.Edge                         `json:"join_plan"`
	TotalCost       graph.JoinCost                       `json:"total_cost"`
	Tables          []string                             `json:"tables"`
	ConceptBindings map[concept.FieldRef]concept.Concept `json:"-"`
	Bindings        []engine.Resolution                  `json:"bindings"`
	QueryBindings   []intent.QueryBinding                `json:"query_bindings,omitempty"`
	Warnings        []string                             `json:"warnings"`
}

// Options tunes the facade.
type Options struct {
	// MaxTables caps the join set after field tables are added. Zero means no cap.
	MaxTables int
}

// Facade is the public entry point of the engine.
type Facade struct {
	provider Provider
	opts     Options
	logger   *zap.SugaredLogger
}

// NewFacade returns a facade reading snapshots from provider.
func NewFacade(provider Provider, opts Options, log *zap.SugaredLogger) *Facade {
	return &Facade{provider: provider, opts: opts, logger: logger.OrNop(log).Named("resolution")}
}

// Resolve plans the join and resolves every field of q against one snapshot.
//
// Business ambiguity that the rules settle is reported through warnings.
// Ambiguity they do not settle fails the call with a *lenserr.Error that
// names the offending identifiers.
func (f *Facade) Resolve(ctx context.Context, q Query) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "resolve")
	}
	snap := f.provider.Current()
	if snap == nil {
		return nil, NoSnapshotError()
	}
	start := time.Now()
	log := f.logger.With(logger.FieldSnapshotID, snap.ID, logger.FieldIntent, q.Intent)
	if fields := logger.FieldsFromContext(ctx); len(fields) > 0 {
		log = log.With(fields...)
	}

	in, ok := snap.Intents.ByName(q.Intent)
	if !ok {
		return nil, lenserr.New(lenserr.KindUnknownIntent, "intent %q is not defined", q.Intent).
			With(lenserr.KeyIntent, q.Intent)
	}

	res := &Result{
		SnapshotID:      snap.ID,
		SnapshotVersion: snap.Version,
		Intent:          in.Name,
		ConceptBindings: make(map[concept.FieldRef]concept.Concept),
		QueryBindings:   snap.Intents.QueryBindings(in.ID),
		Warnings:        []string{},
	}

	tables, fields := f.joinSet(q, res)
	if f.opts.MaxTables > 0 && len(tables) > f.opts.MaxTables {
		return nil, errors.NewInvalidRequestError("query touches %d tables, limit is %d", len(tables), f.opts.MaxTables)
	}
	for _, ref := range fields {
		if !snap.Graph.HasTable(ref.Table) {
			return nil, lenserr.New(lenserr.KindUnknownTable, "field %s names a table missing from the schema graph", ref).
				With(lenserr.KeyTable, ref.Table).
				With(lenserr.KeyField, ref.Field).
				With(lenserr.KeyIntent, in.Name)
		}
	}

	plan, err := snap.Joins.Plan(tables)
	if err != nil {
		return nil, f.fail(log, err)
	}
	res.JoinPlan = plan.Edges
	res.TotalCost = plan.TotalCost
	res.Tables = plan.Tables

	for _, ref := range fields {
		r, err := snap.Engine.ResolveIntent(in, ref)
		if err != nil {
			return nil, f.fail(log, err)
		}
		res.ConceptBindings[ref] = r.Concept
		res.Bindings = append(res.Bindings, r)
		res.Warnings = append(res.Warnings, notes(in.Name, r)...)
	}
	sort.SliceStable(res.Bindings, func(i, j int) bool {
		a, b := res.Bindings[i].Field, res.Bindings[j].Field
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		return a.Field < b.Field
	})

	log.Debugw("Query resolved",
		logger.FieldEdges, len(res.JoinPlan),
		logger.FieldCost, int(res.TotalCost),
		logger.FieldCount, len(res.Bindings),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// NoSnapshotError reports that nothing has been published yet.
func NoSnapshotError() error {
	return errors.WithHint(errors.ErrNoSnapshot,
		"load seed data with 'schemalens db import' or point seeds.dir at a seed directory")
}

// joinSet dedupes tables and fields and adds every field's table to the
// join set, warning about each addition.
func (f *Facade) joinSet(q Query, res *Result) ([]string, []concept.FieldRef) {
	seen := make(map[string]bool, len(q.Tables))
	tables := make([]string, 0, len(q.Tables)+len(q.Fields))
	for _, t := range q.Tables {
		if !seen[t] {
			seen[t] = true
			tables = append(tables, t)
		}
	}

	seenField := make(map[concept.FieldRef]bool, len(q.Fields))
	fields := make([]concept.FieldRef, 0, len(q.Fields))
	for _, ref := range q.Fields {
		if seenField[ref] {
			continue
		}
		seenField[ref] = true
		fields = append(fields, ref)
		if !seen[ref.Table] {
			seen[ref.Table] = true
			tables = append(tables, ref.Table)
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s: table %s was not listed and has been added to the join", ref, ref.Table))
		}
	}
	return tables, fields
}

func (f *Facade) fail(log *zap.SugaredLogger, err error) error {
	if le, ok := lenserr.As(err); ok {
		log.Infow("Resolution failed", le.ToLogFields()...)
	}
	return err
}

// notes renders the advisory part of a resolution as warnings.
func notes(intentName string, r engine.Resolution) []string {
	var out []string
	if r.Overridden != nil {
		out = append(out, fmt.Sprintf("%s: intent %s elevates %s over the primary meaning %s",
			r.Field, intentName, r.Concept.Name, r.Overridden.Name))
	}
	if r.Reason == engine.ReasonPrimaryAfterSuppression {
		for _, c := range r.Suppressed {
			out = append(out, fmt.Sprintf("%s: intent %s suppresses %s; using primary meaning %s",
				r.Field, intentName, c.Name, r.Concept.Name))
		}
	}
	return out
}
