package sandbox

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/copyleftdev/swarmlab/internal/optimization"
)

func TestComputeStats(t *testing.T) {
	particles := []optimization.Candidate{
		{ID: 0, X: 1, Z: 0, Val: 1},
		{ID: 1, X: -1, Z: 0, Val: 2},
		{ID: 2, X: 0, Z: 1, Val: 3},
		{ID: 3, X: 0, Z: -1, Val: 4},
	}

	st := computeStats(7, particles, 0.5, 2.5)
	assert.Equal(t, 7, st.Generation)
	assert.Equal(t, 0.5, st.Best)
	assert.InDelta(t, 2.5, st.Avg, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), st.StdDev, 1e-12)
	assert.InDelta(t, 50, st.SuccessRate, 1e-12)
	assert.InDelta(t, 1, st.Dispersion, 1e-12)
}

func TestComputeStatsEdgeCases(t *testing.T) {
	t.Run("empty population", func(t *testing.T) {
		st := computeStats(1, nil, 3, 0.1)
		assert.Equal(t, GenerationStats{Generation: 1, Best: 3}, st)
	})

	t.Run("single candidate", func(t *testing.T) {
		st := computeStats(1, []optimization.Candidate{{X: 2, Z: 2, Val: -0.05}}, -0.05, 0.1)
		assert.Equal(t, 0.0, st.StdDev)
		assert.Equal(t, 0.0, st.Dispersion)
		assert.Equal(t, 100.0, st.SuccessRate, "the threshold applies to the absolute value")
	})

	t.Run("zero epsilon never succeeds", func(t *testing.T) {
		st := computeStats(1, []optimization.Candidate{{Val: 0}}, 0, 0)
		assert.Equal(t, 0.0, st.SuccessRate)
	})
}
