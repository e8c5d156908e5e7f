package sandbox

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/copyleftdev/swarmlab/internal/optimization"
)

// GenerationStats summarises the population after one generation.
type GenerationStats struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Avg        float64 `json:"avg"`
	// StdDev is the population (biased) standard deviation of the fitness.
	StdDev float64 `json:"std_dev"`
	// SuccessRate is the percentage of candidates with |val| < epsilon.
	SuccessRate float64 `json:"success_rate"`
	// Dispersion is the mean distance of the candidates to their centroid.
	Dispersion float64 `json:"dispersion"`
}

func computeStats(gen int, particles []optimization.Candidate, best, epsilon float64) GenerationStats {
	st := GenerationStats{Generation: gen, Best: best}
	n := len(particles)
	if n == 0 {
		return st
	}

	vals := make([]float64, n)
	xs := make([]float64, n)
	zs := make([]float64, n)
	var hits int
	for i, p := range particles {
		vals[i], xs[i], zs[i] = p.Val, p.X, p.Z
		if math.Abs(p.Val) < epsilon {
			hits++
		}
	}

	mean, variance := stat.PopMeanVariance(vals, nil)
	st.Avg = mean
	st.StdDev = math.Sqrt(math.Max(0, variance))
	st.SuccessRate = float64(hits) / float64(n) * 100

	cx, cz := stat.Mean(xs, nil), stat.Mean(zs, nil)
	var dist float64
	for i := range particles {
		dist += math.Hypot(xs[i]-cx, zs[i]-cz)
	}
	st.Dispersion = dist / float64(n)
	return st
}
