package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/schemalens/concept"
	"github.com/teranos/schemalens/errors"
	lenstest "github.com/teranos/schemalens/internal/testing"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/perspective"
	"github.com/teranos/schemalens/seed"
	"github.com/teranos/schemalens/weight"
)

type registries struct {
	concepts     *concept.Registry
	perspectives *perspective.Registry
}

func loadAll(t *testing.T, recs *seed.Records) (*Registry, registries, error) {
	t.Helper()
	cs, err := concept.Load(recs.Concepts, recs.ConceptBindings)
	require.NoError(t, err)
	ps, err := perspective.Load(recs.Perspectives, recs.PerspectiveWeights, cs)
	require.NoError(t, err)
	r, err := Load(recs.Intents, recs.IntentConceptWeights, recs.IntentPerspectiveWeights, recs.IntentQueryBindings, cs, ps)
	return r, registries{cs, ps}, err
}

func TestConceptWeight(t *testing.T) {
	r, regs, err := loadAll(t, lenstest.ManufacturingRecords())
	require.NoError(t, err)

	in, ok := r.ByName("defect_cost_analysis")
	require.True(t, ok)
	cost, _ := regs.concepts.ByName("defect_severity_cost")
	quality, _ := regs.concepts.ByName("defect_severity_quality")

	assert.Equal(t, weight.Elevated, r.ConceptWeight(in.ID, cost.ID))
	assert.Equal(t, weight.Neutral, r.ConceptWeight(in.ID, quality.ID))

	review, _ := r.ByName("delivery_ops_review")
	contractual, _ := regs.concepts.ByName("on_time_rate_contractual")
	assert.Equal(t, weight.Suppressed, r.ConceptWeight(review.ID, contractual.ID))
}

func TestActivePerspectives(t *testing.T) {
	r, regs, err := loadAll(t, lenstest.ManufacturingRecords())
	require.NoError(t, err)

	in, _ := r.ByName("quality_cost_crosscheck")
	active := r.ActivePerspectives(in.ID)
	require.Len(t, active, 1)
	p, _ := regs.perspectives.Lookup(active[0])
	assert.Equal(t, "quality_engineering", p.Name)

	customer, _ := regs.perspectives.ByName("customer_success")
	assert.Equal(t, weight.Suppressed, r.PerspectiveWeight(in.ID, customer.ID))

	review, _ := r.ByName("delivery_ops_review")
	assert.Empty(t, r.ActivePerspectives(review.ID))
}

func TestQueryBindings(t *testing.T) {
	r, _, err := loadAll(t, lenstest.ManufacturingRecords())
	require.NoError(t, err)

	in, _ := r.ByName("defect_cost_analysis")
	assert.Equal(t, []QueryBinding{{Category: "finance", Name: "defect_cost_by_supplier"}}, r.QueryBindings(in.ID))
	assert.Len(t, r.All(), 5)
}

func TestConflictingElevation(t *testing.T) {
	_, _, err := loadAll(t, lenstest.ConflictingElevationRecords())
	require.Error(t, err)
	assert.True(t, errors.Is(err, lenserr.ErrConflictingElevation))

	e, ok := lenserr.As(err)
	require.True(t, ok)
	assert.Equal(t, "severity_everything", e.Get(lenserr.KeyIntent))
	assert.Equal(t, "product_defects", e.Get(lenserr.KeyTable))
	assert.Equal(t, "severity", e.Get(lenserr.KeyField))
}

func TestElevationOnDifferentFieldsIsAllowed(t *testing.T) {
	recs := lenstest.ManufacturingRecords()
	recs.IntentConceptWeights = append(recs.IntentConceptWeights,
		seed.IntentConceptWeight{IntentID: lenstest.IntentDefectCostAnalysis, ConceptID: lenstest.ConceptOnTimeOperational, Weight: 1},
	)
	_, _, err := loadAll(t, recs)
	assert.NoError(t, err)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*seed.Records)
		want   error
	}{
		{"weight out of domain", func(r *seed.Records) {
			r.IntentConceptWeights = append(r.IntentConceptWeights, seed.IntentConceptWeight{IntentID: 2, ConceptID: 3, Weight: 2})
		}, lenserr.ErrInvalidWeightValue},
		{"perspective weight out of domain", func(r *seed.Records) {
			r.IntentPerspectiveWeights = append(r.IntentPerspectiveWeights, seed.IntentPerspectiveWeight{IntentID: 2, PerspectiveID: 3, Weight: -5})
		}, lenserr.ErrInvalidWeightValue},
		{"unknown intent", func(r *seed.Records) {
			r.IntentConceptWeights = append(r.IntentConceptWeights, seed.IntentConceptWeight{IntentID: 404, ConceptID: 3, Weight: 1})
		}, lenserr.ErrUnknownIntentReference},
		{"unknown concept", func(r *seed.Records) {
			r.IntentConceptWeights = append(r.IntentConceptWeights, seed.IntentConceptWeight{IntentID: 2, ConceptID: 404, Weight: 1})
		}, lenserr.ErrUnknownConceptReference},
		{"unknown perspective", func(r *seed.Records) {
			r.IntentPerspectiveWeights = append(r.IntentPerspectiveWeights, seed.IntentPerspectiveWeight{IntentID: 2, PerspectiveID: 404, Weight: 1})
		}, lenserr.ErrUnknownPerspectiveReference},
		{"duplicate concept weight", func(r *seed.Records) {
			r.IntentConceptWeights = append(r.IntentConceptWeights, seed.IntentConceptWeight{IntentID: 1, ConceptID: 2, Weight: 0})
		}, lenserr.ErrDuplicateWeight},
		{"duplicate intent", func(r *seed.Records) {
			r.Intents = append(r.Intents, seed.Intent{ID: 42, Name: "supplier_scorecard"})
		}, lenserr.ErrDuplicateIntent},
		{"query binding to unknown intent", func(r *seed.Records) {
			r.IntentQueryBindings = append(r.IntentQueryBindings, seed.IntentQueryBinding{IntentID: 404, QueryCategory: "x", QueryName: "y"})
		}, lenserr.ErrUnknownIntentReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := lenstest.ManufacturingRecords()
			tt.mutate(recs)
			_, _, err := loadAll(t, recs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestInvalidWeightCarriesIdentifiers(t *testing.T) {
	recs := lenstest.ManufacturingRecords()
	recs.IntentConceptWeights = append(recs.IntentConceptWeights, seed.IntentConceptWeight{IntentID: 2, ConceptID: 3, Weight: 7})
	_, _, err := loadAll(t, recs)

	e, ok := lenserr.As(err)
	require.True(t, ok)
	assert.Equal(t, "defect_quality_trending", e.Get(lenserr.KeyIntent))
	assert.Equal(t, "defect_severity_customer", e.Get(lenserr.KeyConcept))
	assert.Equal(t, "7", e.Get(lenserr.KeyValue))
}
