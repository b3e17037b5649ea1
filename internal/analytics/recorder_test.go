package analytics

import (
	"testing"

	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/SSAM36/jhc-fnl/internal/perfstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	stats map[string]*perfstore.ModelStats
}

func newMemStore() *memStore {
	return &memStore{stats: make(map[string]*perfstore.ModelStats)}
}

func (s *memStore) StatsFor(modelID string) (*perfstore.ModelStats, bool) {
	st, ok := s.stats[modelID]
	return st, ok
}

func (s *memStore) Update(st *perfstore.ModelStats) error {
	s.stats[st.ModelID] = st
	return nil
}

func threeModelResult() *models.CouncilResult {
	return &models.CouncilResult{
		Query: "q",
		Responses: []models.CandidateResponse{
			{ModelID: "m-a"},
			{ModelID: "m-b"},
			{ModelID: "m-c"},
		},
		Rankings: []models.Ranking{
			{ModelID: "m-a", IsValid: true},
			{ModelID: "m-b", IsValid: true},
			{ModelID: "m-c", IsValid: true},
		},
		Aggregate: []models.AggregateEntry{
			{Label: "B", ModelID: "m-b", WeightedRank: 1.2},
			{Label: "A", ModelID: "m-a", WeightedRank: 2.0},
			{Label: "C", ModelID: "m-c", WeightedRank: 2.8},
		},
	}
}

func TestRecord_QualityScoresByPlacement(t *testing.T) {
	store := newMemStore()
	require.NoError(t, NewRecorder(store).Record(threeModelResult()))

	best, ok := store.StatsFor("m-b")
	require.True(t, ok)
	require.NotNil(t, best.AvgQualityScore)
	assert.InDelta(t, 100.0, *best.AvgQualityScore, 1e-9)
	assert.Equal(t, []float64{100.0}, best.QualityHistory)
	assert.Equal(t, 1, best.TotalRuns)
	assert.Zero(t, best.TotalErrors)

	mid, _ := store.StatsFor("m-a")
	assert.InDelta(t, 50.0, *mid.AvgQualityScore, 1e-9)

	worst, _ := store.StatsFor("m-c")
	assert.InDelta(t, 0.0, *worst.AvgQualityScore, 1e-9)
	assert.False(t, worst.UpdatedAt.IsZero())
}

func TestRecord_RollingAverage(t *testing.T) {
	store := newMemStore()
	rec := NewRecorder(store)

	require.NoError(t, rec.Record(threeModelResult()))

	// Second run: m-a wins, m-b last.
	second := threeModelResult()
	second.Aggregate = []models.AggregateEntry{
		{Label: "A", ModelID: "m-a", WeightedRank: 1.0},
		{Label: "C", ModelID: "m-c", WeightedRank: 2.0},
		{Label: "B", ModelID: "m-b", WeightedRank: 3.0},
	}
	require.NoError(t, rec.Record(second))

	a, _ := store.StatsFor("m-a")
	assert.Equal(t, []float64{50.0, 100.0}, a.QualityHistory)
	assert.InDelta(t, 75.0, *a.AvgQualityScore, 1e-9)
	assert.Equal(t, 2, a.TotalRuns)

	b, _ := store.StatsFor("m-b")
	assert.InDelta(t, 50.0, *b.AvgQualityScore, 1e-9)
}

func TestRecord_EvaluatorErrorsCounted(t *testing.T) {
	result := threeModelResult()
	result.Rankings[2] = models.Ranking{ModelID: "m-c", ErrorMsg: "timeout"}
	// m-c received no votes either.
	result.Aggregate = result.Aggregate[:2]

	store := newMemStore()
	require.NoError(t, NewRecorder(store).Record(result))

	c, ok := store.StatsFor("m-c")
	require.True(t, ok)
	assert.Equal(t, 1, c.TotalRuns)
	assert.Equal(t, 1, c.TotalErrors)
	assert.InDelta(t, 1.0, c.ErrorRate, 1e-9)
	// Absent from the aggregate: no quality sample this run.
	assert.Nil(t, c.AvgQualityScore)
	assert.Empty(t, c.QualityHistory)

	a, _ := store.StatsFor("m-a")
	assert.InDelta(t, 0.0, a.ErrorRate, 1e-9)
	require.NotNil(t, a.AvgQualityScore)
}

func TestRecord_SingleEntryAggregateCarriesNoSignal(t *testing.T) {
	result := threeModelResult()
	result.Aggregate = result.Aggregate[:1]

	store := newMemStore()
	require.NoError(t, NewRecorder(store).Record(result))

	b, _ := store.StatsFor("m-b")
	assert.Nil(t, b.AvgQualityScore)
	assert.Equal(t, 1, b.TotalRuns)
}

func TestRecord_NilResult(t *testing.T) {
	assert.Error(t, NewRecorder(newMemStore()).Record(nil))
}
