package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selekt/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Add(domain.Candidate{ID: "1", Group: "doc1", Embedding: []float64{1, 0, 0}})
	s.Add(domain.Candidate{ID: "2", Group: "doc1", Embedding: []float64{0, 1, 0}})
	return s
}

func TestSearch_RanksByCosine(t *testing.T) {
	s := testStore(t)

	results, err := s.Search([]float64{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Candidate.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestSearch_KZeroReturnsEmpty(t *testing.T) {
	s := testStore(t)
	results, err := s.Search([]float64{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_EmptyStore(t *testing.T) {
	s := NewStore()
	for _, k := range []int{1, 5, 100} {
		results, err := s.Search([]float64{1, 0}, k)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
}

func TestSearch_KLargerThanCount(t *testing.T) {
	s := testStore(t)
	results, err := s.Search([]float64{1, 1, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Add(domain.Candidate{ID: "a", Embedding: []float64{1, 0}})
	s.Add(domain.Candidate{ID: "b", Embedding: []float64{1, 0}})
	s.Add(domain.Candidate{ID: "c", Embedding: []float64{2, 0}})

	results, err := s.Search([]float64{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// All three score 1.0; insertion order breaks the tie.
	assert.Equal(t, "a", results[0].Candidate.ID)
	assert.Equal(t, "b", results[1].Candidate.ID)
	assert.Equal(t, "c", results[2].Candidate.ID)
}

func TestSearch_SkipsCandidatesWithoutEmbedding(t *testing.T) {
	s := testStore(t)
	s.Add(domain.Candidate{ID: "3", Group: "doc2"})

	results, err := s.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "3", r.Candidate.ID)
	}
}

func TestSearch_SkipsMismatchedDimensions(t *testing.T) {
	s := testStore(t)
	s.Add(domain.Candidate{ID: "wide", Group: "doc2", Embedding: []float64{1, 0, 0, 0}})

	results, err := s.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := testStore(t)
	_, err := s.Search(nil, 5)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestRemoveByGroup(t *testing.T) {
	s := testStore(t)
	s.Add(domain.Candidate{ID: "3", Group: "doc2", Embedding: []float64{0, 0, 1}})

	assert.Equal(t, 2, s.RemoveByGroup("doc1"))
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, 0, s.RemoveByGroup("missing"))
}

func TestClear(t *testing.T) {
	s := testStore(t)
	s.Clear()
	assert.Zero(t, s.Count())
	results, err := s.Search([]float64{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGroups(t *testing.T) {
	s := testStore(t)
	s.Add(domain.Candidate{ID: "3", Group: "doc0", Embedding: []float64{0, 0, 1}})

	assert.Equal(t, []string{"doc0", "doc1"}, s.Groups())
	assert.Equal(t, 2, s.CountByGroup("doc1"))
	assert.Equal(t, 0, s.CountByGroup("missing"))
}

func TestSearch_ReturnsFreshSlice(t *testing.T) {
	s := testStore(t)
	first, err := s.Search([]float64{1, 0, 0}, 2)
	require.NoError(t, err)
	first[0].Score = -99

	second, err := s.Search([]float64{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, second[0].Score, 1e-9)
}
