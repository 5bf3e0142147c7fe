package server

import (
	"net/http"
	"time"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/graph"
	"github.com/teranos/schemalens/intent"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/resolution"
	"github.com/teranos/schemalens/snapshot"
	"github.com/teranos/schemalens/version"
)

// PathRequest asks for a join plan over tables
type PathRequest struct {
	Tables []string `json:"tables"`
}

// PathResponse is a join plan tagged with the snapshot it was planned on
type PathResponse struct {
	SnapshotID      string         `json:"snapshot_id"`
	SnapshotVersion uint64         `json:"snapshot_version"`
	Edges           []graph.Edge   `json:"edges"`
	TotalCost       graph.JoinCost `json:"total_cost"`
	Tables          []string       `json:"tables"`
}

// SnapshotResponse summarises the active snapshot
type SnapshotResponse struct {
	snapshot.Info
	Graph graph.Stats `json:"graph"`
}

// IntentSummary is one intent with the perspectives it activates
type IntentSummary struct {
	intent.Intent
	Perspectives  []string              `json:"perspectives,omitempty"`
	QueryBindings []intent.QueryBinding `json:"query_bindings,omitempty"`
}

// HandleHealth reports liveness, build and snapshot state
func (s *LensServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	versionInfo := version.Get()
	health := map[string]interface{}{
		"status":     "ok",
		"version":    versionInfo.Version,
		"commit":     versionInfo.CommitHash,
		"build_time": versionInfo.BuildTime,
		"clients":    s.ClientCount(),
		"uptime_s":   int(time.Since(s.startedAt).Seconds()),
	}
	if snap := s.holder.Current(); snap != nil {
		health["snapshot_version"] = snap.Version
	} else {
		health["status"] = "no_snapshot"
	}
	writeJSON(w, http.StatusOK, health)
}

// HandleResolve resolves a query's fields and plans its join
func (s *LensServer) HandleResolve(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var q resolution.Query
	if err := readJSON(w, r, &q); err != nil {
		return
	}
	if q.Intent == "" {
		q.Intent = s.opts.DefaultIntent
	}
	if q.Intent == "" {
		writeError(w, http.StatusBadRequest, "intent is required (no resolver.default_intent configured)")
		return
	}

	ctx := logger.WithComponent(r.Context(), "http")
	res, err := s.facade.Resolve(ctx, q)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePath plans a join without resolving fields
func (s *LensServer) HandlePath(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req PathRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	snap := s.holder.Current()
	if snap == nil {
		s.writeEngineError(w, r, resolution.NoSnapshotError())
		return
	}
	if s.opts.MaxTables > 0 && len(req.Tables) > s.opts.MaxTables {
		s.writeEngineError(w, r, errors.NewInvalidRequestError("query touches %d tables, limit is %d", len(req.Tables), s.opts.MaxTables))
		return
	}

	plan, err := snap.Joins.Plan(req.Tables)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PathResponse{
		SnapshotID:      snap.ID,
		SnapshotVersion: snap.Version,
		Edges:           nonNilEdges(plan.Edges),
		TotalCost:       plan.TotalCost,
		Tables:          plan.Tables,
	})
}

// HandleSnapshot reports the active snapshot
func (s *LensServer) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	snap := s.holder.Current()
	if snap == nil {
		s.writeEngineError(w, r, resolution.NoSnapshotError())
		return
	}
	writeJSON(w, http.StatusOK, SnapshotResponse{Info: snap.Info(), Graph: snap.Graph.Stats()})
}

// HandleIntents lists every intent of the active snapshot
func (s *LensServer) HandleIntents(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	snap := s.holder.Current()
	if snap == nil {
		s.writeEngineError(w, r, resolution.NoSnapshotError())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_version": snap.Version,
		"intents":          SummarizeIntents(snap),
	})
}

// HandleReload rebuilds the snapshot from the configured seed source
func (s *LensServer) HandleReload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.reloader == nil {
		writeError(w, http.StatusNotImplemented, "reload is not configured")
		return
	}
	snap, err := s.reloader.Reload(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Info())
}

// SummarizeIntents lists the intents of snap in name order
func SummarizeIntents(snap *snapshot.Snapshot) []IntentSummary {
	all := snap.Intents.All()
	out := make([]IntentSummary, 0, len(all))
	for _, in := range all {
		sum := IntentSummary{Intent: in, QueryBindings: snap.Intents.QueryBindings(in.ID)}
		for _, pid := range snap.Intents.ActivePerspectives(in.ID) {
			if p, ok := snap.Perspectives.Lookup(pid); ok {
				sum.Perspectives = append(sum.Perspectives, p.Name)
			}
		}
		out = append(out, sum)
	}
	return out
}

func nonNilEdges(edges []graph.Edge) []graph.Edge {
	if edges == nil {
		return []graph.Edge{}
	}
	return edges
}
