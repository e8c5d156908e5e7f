package algorithm

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
	"github.com/copyleftdev/swarmlab/internal/optimization/mathutil"
)

// levyBeta is the stability index of the Lévy flights.
const levyBeta = 1.5

// levyBaseScale is the fraction of the bounds one unit of LevyScale spans.
const levyBaseScale = 0.01

// CuckooParams tunes Cuckoo Search.
type CuckooParams struct {
	// Pa is the fraction of nests abandoned each generation.
	Pa float64 `json:"pa"`
	// LevyScale multiplies the Lévy step length.
	LevyScale float64 `json:"levy_scale"`
}

// DefaultCuckooParams returns pa=0.25, levyScale=0.2.
func DefaultCuckooParams() CuckooParams {
	return CuckooParams{Pa: 0.25, LevyScale: 0.2}
}

// CuckooSearch moves each nest by a Lévy flight, keeps the move only if it
// improves the nest, then abandons the worst fraction of nests while sparing
// the best one.
type CuckooSearch struct {
	population
	sigma float64
}

// NewCuckooSearch returns a Cuckoo Search drawing from rng and reading cfg.
func NewCuckooSearch(rng Rand, cfg *Config) *CuckooSearch {
	return &CuckooSearch{
		population: newPopulation(CuckooID, rng, cfg),
		sigma:      mathutil.MantegnaSigma(levyBeta),
	}
}

func (c *CuckooSearch) Init(l landscape.Landscape) error {
	if err := c.validate(l); err != nil {
		return err
	}
	p := c.cfg.Cuckoo
	if !inUnit(p.Pa) {
		return invalid(c.id, "discovery rate must be in [0, 1], got %v", p.Pa)
	}
	if !(p.LevyScale >= 0) || !finite(p.LevyScale) {
		return invalid(c.id, "levy scale must be non-negative, got %v", p.LevyScale)
	}
	c.reset()
	c.seed(l)
	return nil
}

func (c *CuckooSearch) Step(l landscape.Landscape) {
	if len(c.particles) == 0 {
		return
	}
	b := l.Bounds()
	p := c.cfg.Cuckoo
	jump := p.LevyScale * (b * levyBaseScale)

	for i := range c.particles {
		nest := &c.particles[i]
		nx := reflect(nest.X+mathutil.LevyStep(c.rng, levyBeta, c.sigma)*jump, b)
		nz := reflect(nest.Z+mathutil.LevyStep(c.rng, levyBeta, c.sigma)*jump, b)
		if v := l.F(nx, nz); v < nest.Val {
			nest.X, nest.Z, nest.Val = nx, nz, v
		}
	}

	c.abandon(l, int(math.Floor(float64(len(c.particles))*p.Pa)))
	c.observeAll()
}

// abandon re-randomises the n worst nests. The nest holding the current
// minimum (first index on ties) is never abandoned.
func (c *CuckooSearch) abandon(l landscape.Landscape, n int) {
	if n <= 0 {
		return
	}
	b := l.Bounds()

	order := make([]int, len(c.particles))
	vals := make([]float64, len(c.particles))
	for i, nest := range c.particles {
		order[i] = i
		vals[i] = nest.Val
	}
	sort.SliceStable(order, func(i, j int) bool {
		return vals[order[i]] > vals[order[j]]
	})
	protected := floats.MinIdx(vals)

	if n > len(order) {
		n = len(order)
	}
	for _, idx := range order[:n] {
		if idx == protected {
			continue
		}
		x, z := c.uniform(b)
		nest := &c.particles[idx]
		nest.X, nest.Z, nest.Val = x, z, l.F(x, z)
	}
}

func (c *CuckooSearch) Params() []optimization.Param {
	p := c.cfg.Cuckoo
	return []optimization.Param{
		{Name: "pa", Value: formatFloat(p.Pa)},
		{Name: "levyScale", Value: formatFloat(p.LevyScale)},
	}
}

// reflect mirrors v back into [-b, b]. A single mirror handles overshoots of
// up to 2b; mirroring at both walls is periodic with period 4b, so larger
// Lévy jumps are folded back in one pass.
func reflect(v, b float64) float64 {
	if v > b {
		v = 2*b - v
	} else if v < -b {
		v = -2*b - v
	}
	if v >= -b && v <= b {
		return v
	}
	period := 4 * b
	u := math.Mod(v+b, period)
	if u < 0 {
		u += period
	}
	if u > 2*b {
		u = period - u
	}
	return u - b
}
