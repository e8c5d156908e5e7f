package algorithm

import (
	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
)

// RandomSearch replaces every candidate with a fresh uniform point each
// generation. It is the memoryless baseline the other methods are measured
// against.
type RandomSearch struct {
	population
}

// NewRandomSearch returns a random search drawing from rng and reading cfg.
func NewRandomSearch(rng Rand, cfg *Config) *RandomSearch {
	return &RandomSearch{population: newPopulation(RandomID, rng, cfg)}
}

func (r *RandomSearch) Init(l landscape.Landscape) error {
	if err := r.validate(l); err != nil {
		return err
	}
	r.reset()
	r.seed(l)
	return nil
}

func (r *RandomSearch) Step(l landscape.Landscape) {
	b := l.Bounds()
	for i := range r.particles {
		x, z := r.uniform(b)
		c := &r.particles[i]
		c.X, c.Z, c.Val = x, z, l.F(x, z)
		r.observe(c.Point())
	}
}

func (r *RandomSearch) Params() []optimization.Param {
	return nil
}
