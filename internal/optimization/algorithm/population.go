package algorithm

import (
	"math"
	"strconv"

	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
)

// population is the state every variant shares: the candidates, the best
// point and the injected dependencies.
type population struct {
	id        ID
	rng       Rand
	cfg       *Config
	particles []optimization.Candidate
	best      optimization.Point
}

func newPopulation(id ID, rng Rand, cfg *Config) population {
	return population{id: id, rng: rng, cfg: cfg, best: optimization.Unset()}
}

func (p *population) ID() ID { return p.id }

func (p *population) Particles() []optimization.Candidate {
	out := make([]optimization.Candidate, len(p.particles))
	copy(out, p.particles)
	return out
}

func (p *population) Best() optimization.Point { return p.best }

// validate checks the preconditions shared by every variant.
func (p *population) validate(l landscape.Landscape) error {
	if l == nil {
		return invalid(p.id, "landscape must not be nil")
	}
	if p.cfg.PopSize <= 0 {
		return invalid(p.id, "population size must be positive, got %d", p.cfg.PopSize)
	}
	if b := l.Bounds(); !(b > 0) || math.IsInf(b, 0) {
		return invalid(p.id, "landscape bounds must be positive and finite, got %v", b)
	}
	return nil
}

// reset clears the run state before a fresh Init.
func (p *population) reset() {
	p.particles = make([]optimization.Candidate, 0, p.cfg.PopSize)
	p.best = optimization.Unset()
}

// uniform draws a point uniformly from [-b, b]². x is drawn before z.
func (p *population) uniform(b float64) (float64, float64) {
	x := (p.rng.Next()*2 - 1) * b
	z := (p.rng.Next()*2 - 1) * b
	return x, z
}

// seed fills the population with uniform random candidates.
func (p *population) seed(l landscape.Landscape) {
	b := l.Bounds()
	for i := 0; i < p.cfg.PopSize; i++ {
		x, z := p.uniform(b)
		p.add(l, i, x, z)
	}
}

func (p *population) add(l landscape.Landscape, id int, x, z float64) {
	c := optimization.Candidate{ID: id, X: x, Z: z, Val: l.F(x, z)}
	p.particles = append(p.particles, c)
	p.observe(c.Point())
}

// observe lowers best to pt if pt is strictly better.
func (p *population) observe(pt optimization.Point) {
	if pt.Val < p.best.Val {
		p.best = pt
	}
}

func (p *population) observeAll() {
	for _, c := range p.particles {
		p.observe(c.Point())
	}
}

func clamp(v, b float64) float64 {
	return math.Max(-b, math.Min(b, v))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
