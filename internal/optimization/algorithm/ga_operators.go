package algorithm

import (
	"math"
	"sort"

	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/mathutil"
)

// Selection names a parent-selection operator.
type Selection string

const (
	TournamentSelection Selection = "tournament"
	RouletteSelection   Selection = "roulette"
	RankSelection       Selection = "rank"
	RandomSelection     Selection = "random"
)

func (s Selection) valid() bool {
	switch s {
	case TournamentSelection, RouletteSelection, RankSelection, RandomSelection:
		return true
	}
	return false
}

// Crossover names a recombination operator.
type Crossover string

const (
	BlendCrossover       Crossover = "blend"
	SinglePointCrossover Crossover = "single_point"
	UniformCrossover     Crossover = "uniform"
	SBXCrossover         Crossover = "sbx"
)

func (c Crossover) valid() bool {
	switch c {
	case BlendCrossover, SinglePointCrossover, UniformCrossover, SBXCrossover:
		return true
	}
	return false
}

// Mutation names a mutation operator.
type Mutation string

const (
	UniformMutation    Mutation = "uniform"
	GaussianMutation   Mutation = "gaussian"
	PolynomialMutation Mutation = "polynomial"
	SwapMutation       Mutation = "swap"
)

func (m Mutation) valid() bool {
	switch m {
	case UniformMutation, GaussianMutation, PolynomialMutation, SwapMutation:
		return true
	}
	return false
}

// mutationScale is the jitter width of uniform and Gaussian mutation as a
// fraction of the bounds.
const mutationScale = 0.1

// polynomialEta is the distribution index of polynomial mutation.
const polynomialEta = 20

// selector returns a parent picker over pop. Weight tables for roulette and
// rank are built once per generation. Unknown names fall back to tournament.
func selector(kind Selection, rng Rand, pop []optimization.Candidate) func() optimization.Candidate {
	switch kind {
	case RouletteSelection:
		weights := make([]float64, len(pop))
		for i, c := range pop {
			// Inverted fitness for minimisation; negative values count as zero.
			weights[i] = 1 / (1 + math.Max(c.Val, 0))
		}
		return func() optimization.Candidate {
			return pop[mathutil.WeightedIndex(rng, weights)]
		}

	case RankSelection:
		order := make([]int, len(pop))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return pop[order[i]].Val < pop[order[j]].Val
		})
		// Linear ranking: the best gets weight n, the worst gets 1.
		weights := make([]float64, len(pop))
		for rank := range order {
			weights[rank] = float64(len(pop) - rank)
		}
		return func() optimization.Candidate {
			return pop[order[mathutil.WeightedIndex(rng, weights)]]
		}

	case RandomSelection:
		return func() optimization.Candidate {
			return pop[rng.NextInt(0, len(pop))]
		}

	default:
		return func() optimization.Candidate {
			var best optimization.Candidate
			for i := 0; i < tournamentSize; i++ {
				c := pop[rng.NextInt(0, len(pop))]
				if i == 0 || c.Val < best.Val {
					best = c
				}
			}
			return best
		}
	}
}

// crossover recombines two parents into one child. Unknown names fall back
// to blend.
func crossover(kind Crossover, rng Rand, p1, p2 optimization.Candidate, eta float64) (float64, float64) {
	switch kind {
	case SinglePointCrossover:
		// With two genes the only cut point sits between x and z.
		return p1.X, p2.Z

	case UniformCrossover:
		x, z := p1.X, p1.Z
		if rng.Next() < 0.5 {
			x = p2.X
		}
		if rng.Next() < 0.5 {
			z = p2.Z
		}
		return x, z

	case SBXCrossover:
		return sbx(rng, p1.X, p2.X, eta), sbx(rng, p1.Z, p2.Z, eta)

	default:
		alpha := rng.Next()
		return alpha*p1.X + (1-alpha)*p2.X, alpha*p1.Z + (1-alpha)*p2.Z
	}
}

// sbx is simulated binary crossover on one gene, returning the first child.
func sbx(rng Rand, a, b, eta float64) float64 {
	u := rng.Next()
	var beta float64
	if u <= 0.5 {
		beta = math.Pow(2*u, 1/(eta+1))
	} else {
		beta = math.Pow(1/(2*(1-u)), 1/(eta+1))
	}
	return 0.5 * ((1+beta)*a + (1-beta)*b)
}

// mutate perturbs a child inside [-b, b]². Unknown names fall back to
// uniform jitter.
func mutate(kind Mutation, rng Rand, x, z, b float64) (float64, float64) {
	switch kind {
	case GaussianMutation:
		sigma := b * mutationScale
		x += mathutil.NormalRandom(rng) * sigma
		z += mathutil.NormalRandom(rng) * sigma
		return x, z

	case PolynomialMutation:
		span := 2 * b
		return x + polynomialDelta(rng)*span, z + polynomialDelta(rng)*span

	case SwapMutation:
		return z, x

	default:
		w := b * mutationScale
		x += (rng.Next()*2 - 1) * w
		z += (rng.Next()*2 - 1) * w
		return x, z
	}
}

// polynomialDelta draws the normalised perturbation of polynomial mutation,
// in [-1, 1) and concentrated near zero.
func polynomialDelta(rng Rand) float64 {
	u := rng.Next()
	if u < 0.5 {
		return math.Pow(2*u, 1.0/(polynomialEta+1)) - 1
	}
	return 1 - math.Pow(2*(1-u), 1.0/(polynomialEta+1))
}
