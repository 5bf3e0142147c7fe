package snapshot

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/schemalens/errors"
	lenstest "github.com/teranos/schemalens/internal/testing"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/seed"
)

func TestBuildFromFixture(t *testing.T) {
	s, err := Build(lenstest.ManufacturingRecords(), Options{StrictTables: true})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Len(t, s.Digest, 64)
	assert.Zero(t, s.Version)
	assert.Equal(t, 5, s.Info().Counts["nodes"])
	assert.True(t, s.Graph.HasTable("archive_logs"))
}

func TestBuildRejectsConflictingElevation(t *testing.T) {
	s, err := Build(lenstest.ConflictingElevationRecords(), Options{})
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, lenserr.ErrConflictingElevation))
}

func TestBuildStrictTables(t *testing.T) {
	recs := lenstest.ManufacturingRecords()
	recs.ConceptBindings = append(recs.ConceptBindings, seed.ConceptFieldBinding{
		TableName: "warehouses", FieldName: "capacity", ConceptID: lenstest.ConceptDefectImpact, IsPrimaryMeaning: true,
	})

	_, err := Build(recs, Options{})
	require.NoError(t, err)

	_, err = Build(recs, Options{StrictTables: true})
	assert.True(t, errors.Is(err, lenserr.ErrUnknownTable))
}

func TestRoundTripRebuildsAreEquivalent(t *testing.T) {
	recs := lenstest.ManufacturingRecords()
	a, err := Build(recs, Options{})
	require.NoError(t, err)

	shuffled := lenstest.ManufacturingRecords()
	for i, j := 0, len(shuffled.Edges)-1; i < j; i, j = i+1, j-1 {
		shuffled.Edges[i], shuffled.Edges[j] = shuffled.Edges[j], shuffled.Edges[i]
	}
	for i, j := 0, len(shuffled.ConceptBindings)-1; i < j; i, j = i+1, j-1 {
		shuffled.ConceptBindings[i], shuffled.ConceptBindings[j] = shuffled.ConceptBindings[j], shuffled.ConceptBindings[i]
	}
	b, err := Build(shuffled, Options{})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Digest, b.Digest)

	pairs := [][2]string{
		{"suppliers", "product_defects"},
		{"daily_deliveries", "product_defects"},
		{"products", "suppliers"},
	}
	for _, p := range pairs {
		pa, err := a.Graph.ShortestPath(p[0], p[1])
		require.NoError(t, err)
		pb, err := b.Graph.ShortestPath(p[0], p[1])
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}

	for _, in := range a.Intents.All() {
		for _, ref := range a.Concepts.Fields() {
			ra, errA := a.Engine.Resolve(in.Name, ref.Table, ref.Field)
			rb, errB := b.Engine.Resolve(in.Name, ref.Table, ref.Field)
			assert.Equal(t, ra, rb)
			if errA != nil {
				require.Error(t, errB)
				assert.Equal(t, errA.Error(), errB.Error())
			}
		}
	}
}

func TestHolderSwapAssignsVersions(t *testing.T) {
	h := NewHolder()
	assert.Nil(t, h.Current())

	events, cancel := h.Subscribe()
	defer cancel()

	s1, err := Build(lenstest.ManufacturingRecords(), Options{})
	require.NoError(t, err)
	published, prev := h.Swap(s1)
	assert.Nil(t, prev)
	assert.Equal(t, uint64(1), published.Version)
	assert.Zero(t, s1.Version)
	assert.Same(t, published, h.Current())

	s2, err := Build(lenstest.ManufacturingRecords(), Options{})
	require.NoError(t, err)
	published2, prev := h.Swap(s2)
	assert.Same(t, published, prev)
	assert.Equal(t, uint64(2), published2.Version)

	ev := <-events
	assert.Nil(t, ev.Previous)
	assert.Equal(t, uint64(1), ev.Current.Version)
	ev = <-events
	require.NotNil(t, ev.Previous)
	assert.Equal(t, uint64(1), ev.Previous.Version)
	assert.Equal(t, s2.ID, ev.Current.ID)
}

func TestHolderUnsubscribeClosesChannel(t *testing.T) {
	h := NewHolder()
	events, cancel := h.Subscribe()
	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)
}

func TestConcurrentReadsDuringSwap(t *testing.T) {
	h := NewHolder()
	s, err := Build(lenstest.ManufacturingRecords(), Options{})
	require.NoError(t, err)
	h.Swap(s)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cur := h.Current()
				res, err := cur.Engine.Resolve("defect_cost_analysis", "product_defects", "severity")
				if assert.NoError(t, err) {
					assert.Equal(t, "defect_severity_cost", res.Concept.Name)
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		next, err := Build(lenstest.ManufacturingRecords(), Options{})
		require.NoError(t, err)
		h.Swap(next)
	}
	wg.Wait()
	assert.Equal(t, uint64(11), h.Current().Version)
}

func TestConcurrentSwapsPublishInVersionOrder(t *testing.T) {
	h := NewHolder()
	s, err := Build(lenstest.ManufacturingRecords(), Options{})
	require.NoError(t, err)

	events, cancel := h.Subscribe()
	var seen []Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			seen = append(seen, ev)
		}
	}()

	const swappers, rounds = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < swappers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				published, previous := h.Swap(s)
				if previous != nil {
					assert.Equal(t, published.Version-1, previous.Version)
				}
			}
		}()
	}
	wg.Wait()
	cancel()
	<-done

	assert.Equal(t, uint64(swappers*rounds), h.Current().Version)
	require.NotEmpty(t, seen)
	for i, ev := range seen {
		if ev.Previous != nil {
			assert.Equal(t, ev.Current.Version-1, ev.Previous.Version)
		}
		if i > 0 {
			assert.Greater(t, ev.Current.Version, seen[i-1].Current.Version)
		}
	}
}

type staticSource struct {
	recs *seed.Records
	err  error
}

func (s *staticSource) LoadRecords(context.Context) (*seed.Records, error) { return s.recs, s.err }
func (s *staticSource) Describe() string { return "static" }

func TestReloaderKeepsSnapshotOnFailure(t *testing.T) {
	h := NewHolder()
	src := &staticSource{recs: lenstest.ManufacturingRecords()}
	r := NewReloader(h, src, Options{}, zaptest.NewLogger(t).Sugar())

	first, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version)

	// Identical records are not rebuilt.
	same, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, same)

	src.recs = lenstest.ConflictingElevationRecords()
	_, err = r.Reload(context.Background())
	assert.True(t, errors.Is(err, lenserr.ErrConflictingElevation))
	assert.Same(t, first, h.Current())

	src.err = errors.New("disk gone")
	_, err = r.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.Same(t, first, h.Current())
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	lenstest.WriteSeedFile(t, dir, "manufacturing.yaml", lenstest.ManufacturingRecords())

	src := DirSource{Dir: dir}
	assert.Equal(t, "dir:"+dir, src.Describe())

	h := NewHolder()
	s, err := NewReloader(h, src, Options{StrictTables: true}, nil).Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lenstest.ManufacturingRecords().Digest(), s.Digest)
}
