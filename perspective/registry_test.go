package perspective

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/schemalens/concept"
	"github.com/teranos/schemalens/errors"
	lenstest "github.com/teranos/schemalens/internal/testing"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/seed"
)

func fixture(t *testing.T) (*seed.Records, *concept.Registry) {
	t.Helper()
	recs := lenstest.ManufacturingRecords()
	concepts, err := concept.Load(recs.Concepts, recs.ConceptBindings)
	require.NoError(t, err)
	return recs, concepts
}

func TestConceptsForOrderedByPriority(t *testing.T) {
	recs, concepts := fixture(t)
	recs.PerspectiveWeights = append(recs.PerspectiveWeights,
		seed.PerspectiveConceptWeight{PerspectiveID: lenstest.PerspectiveQuality, ConceptID: lenstest.ConceptDefectImpact, RelationshipType: "EMPHASIZES", PriorityWeight: 10},
	)
	r, err := Load(recs.Perspectives, recs.PerspectiveWeights, concepts)
	require.NoError(t, err)

	q, ok := r.ByName("quality_engineering")
	require.True(t, ok)

	stances := r.ConceptsFor(q.ID)
	require.Len(t, stances, 3)
	// Equal priority falls back to concept name.
	assert.Equal(t, "defect_impact", stances[0].Concept.Name)
	assert.Equal(t, "defect_severity_quality", stances[1].Concept.Name)
	assert.Equal(t, UsesDefinition, stances[1].Relationship)
	assert.Equal(t, "defect_severity_cost", stances[2].Concept.Name)
	assert.Equal(t, 3, stances[2].Priority)
}

func TestSuppressesAndEmphasizes(t *testing.T) {
	recs, concepts := fixture(t)
	r, err := Load(recs.Perspectives, recs.PerspectiveWeights, concepts)
	require.NoError(t, err)

	quality, _ := r.ByName("quality_engineering")
	finance, _ := r.ByName("finance")
	cost, _ := concepts.ByName("defect_severity_cost")

	assert.True(t, r.Suppresses(quality.ID, cost.ID))
	assert.False(t, r.Suppresses(finance.ID, cost.ID))
	assert.True(t, r.Emphasizes(finance.ID, cost.ID))

	rel, ok := r.Relationship(finance.ID, cost.ID)
	require.True(t, ok)
	assert.Equal(t, Emphasizes, rel)

	assert.Len(t, r.All(), 3)
	assert.Equal(t, "customer_success", r.All()[0].Name)

	p, ok := r.BySeedID(lenstest.PerspectiveFinance)
	require.True(t, ok)
	assert.Equal(t, finance, p)
	assert.Nil(t, r.ConceptsFor(ID(42)))
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		add  seed.PerspectiveConceptWeight
		want error
	}{
		{"unknown perspective", seed.PerspectiveConceptWeight{PerspectiveID: 404, ConceptID: 1, RelationshipType: "EMPHASIZES", PriorityWeight: 1}, lenserr.ErrUnknownPerspectiveReference},
		{"unknown concept", seed.PerspectiveConceptWeight{PerspectiveID: 1, ConceptID: 404, RelationshipType: "EMPHASIZES", PriorityWeight: 1}, lenserr.ErrUnknownConceptReference},
		{"bad relationship", seed.PerspectiveConceptWeight{PerspectiveID: 1, ConceptID: 3, RelationshipType: "LIKES", PriorityWeight: 1}, lenserr.ErrInvalidRelationshipType},
		{"zero priority", seed.PerspectiveConceptWeight{PerspectiveID: 1, ConceptID: 3, RelationshipType: "EMPHASIZES", PriorityWeight: 0}, lenserr.ErrInvalidPriorityWeight},
		{"duplicate pair", seed.PerspectiveConceptWeight{PerspectiveID: 1, ConceptID: 1, RelationshipType: "EMPHASIZES", PriorityWeight: 2}, lenserr.ErrDuplicateWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, concepts := fixture(t)
			_, err := Load(recs.Perspectives, append(recs.PerspectiveWeights, tt.add), concepts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestLoadRejectsDuplicatePerspective(t *testing.T) {
	recs, concepts := fixture(t)
	ps := append(recs.Perspectives, seed.Perspective{ID: 77, Name: "finance"})
	_, err := Load(ps, nil, concepts)
	assert.True(t, errors.Is(err, lenserr.ErrDuplicatePerspective))
}
