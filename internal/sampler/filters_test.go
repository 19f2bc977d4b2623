package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selekt/internal/domain"
)

func TestSoftmax_SumsToOne(t *testing.T) {
	tests := map[string][]float64{
		"ascending":    {1, 2, 3},
		"flat":         {0.5, 0.5, 0.5},
		"negative":     {-10, -20, -30},
		"large-spread": {1000, 0, -1000},
		"single":       {42},
	}
	for name, scores := range tests {
		t.Run(name, func(t *testing.T) {
			probs := Softmax(scores)
			require.Len(t, probs, len(scores))
			sum := 0.0
			maxScoreIdx, maxProbIdx := 0, 0
			for i, p := range probs {
				assert.GreaterOrEqual(t, p, 0.0)
				sum += p
				if scores[i] > scores[maxScoreIdx] {
					maxScoreIdx = i
				}
				if p > probs[maxProbIdx] {
					maxProbIdx = i
				}
			}
			assert.InDelta(t, 1.0, sum, 1e-6)
			assert.Equal(t, maxScoreIdx, maxProbIdx)
		})
	}
}

func TestSoftmax_Empty(t *testing.T) {
	assert.Nil(t, Softmax(nil))
}

func TestTopKFilter(t *testing.T) {
	probs := []float64{0.1, 0.2, 0.3, 0.4}
	filtered, err := TopKFilter(probs, 2)
	require.NoError(t, err)

	nonzero := 0
	sum := 0.0
	for _, p := range filtered {
		if p > 0 {
			nonzero++
		}
		sum += p
	}
	assert.Equal(t, 2, nonzero)
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Zero(t, filtered[0])
	assert.Zero(t, filtered[1])
	// Relative order of the retained entries is unchanged.
	assert.Greater(t, filtered[3], filtered[2])
}

func TestTopKFilter_Disabled(t *testing.T) {
	probs := []float64{0.25, 0.25, 0.5}
	for _, k := range []int{0, 3, 10} {
		filtered, err := TopKFilter(probs, k)
		require.NoError(t, err)
		assert.Equal(t, probs, filtered)
	}
}

func TestTopKFilter_Degenerate(t *testing.T) {
	filtered, err := TopKFilter([]float64{0, 0, 0, 0}, 2)
	assert.ErrorIs(t, err, domain.ErrDegenerateDistribution)
	for _, p := range filtered {
		assert.Zero(t, p)
	}
}

func TestTopPFilter(t *testing.T) {
	probs := []float64{0.1, 0.2, 0.3, 0.4}

	// 0.4 + 0.3 crosses 0.6 inclusively; only indexes 3 and 2 survive.
	filtered, err := TopPFilter(probs, 0.6)
	require.NoError(t, err)
	assert.Zero(t, filtered[0])
	assert.Zero(t, filtered[1])
	assert.InDelta(t, 0.3/0.7, filtered[2], 1e-9)
	assert.InDelta(t, 0.4/0.7, filtered[3], 1e-9)
}

func TestTopPFilter_InclusiveCrossing(t *testing.T) {
	probs := []float64{0.5, 0.5}
	// The first element alone reaches p, so the prefix is exactly one.
	filtered, err := TopPFilter(probs, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, filtered)
}

func TestTopPFilter_NoOpAtOne(t *testing.T) {
	probs := []float64{0.1, 0.2, 0.3, 0.4}
	filtered, err := TopPFilter(probs, 1.0)
	require.NoError(t, err)
	assert.Equal(t, probs, filtered)
}

func TestConcreteScenario_TopKTwo(t *testing.T) {
	// Scores [1,2,3,4] with top_k=2, top_p=1, temperature=1 and empty
	// history must leave probability only on indexes 2 and 3, with index
	// 3 the more likely.
	s := New(WithRand(func() float64 { return 0 }))
	probs, err := s.Distribution([]float64{1, 2, 3, 4}, Policy{
		Temperature:       1,
		TopK:              2,
		TopP:              1,
		RepetitionPenalty: 1,
	})
	require.NoError(t, err)
	assert.Zero(t, probs[0])
	assert.Zero(t, probs[1])
	assert.Greater(t, probs[2], 0.0)
	assert.Greater(t, probs[3], probs[2])
	assert.InDelta(t, 1.0, probs[2]+probs[3], 1e-9)
}
