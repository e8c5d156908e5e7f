package algorithm

import (
	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
)

// tournamentSize is the number of contestants in tournament selection.
const tournamentSize = 3

// GAParams tunes the Genetic Algorithm.
type GAParams struct {
	Selection     Selection `json:"selection"`
	Crossover     Crossover `json:"crossover"`
	Mutation      Mutation  `json:"mutation"`
	CrossoverRate float64   `json:"crossover_rate"`
	MutationRate  float64   `json:"mutation_rate"`
	// SBXEta is the distribution index of simulated binary crossover.
	SBXEta float64 `json:"sbx_eta"`
}

// DefaultGAParams returns tournament selection, blend crossover at 0.8 and
// uniform mutation at 0.1.
func DefaultGAParams() GAParams {
	return GAParams{
		Selection:     TournamentSelection,
		Crossover:     BlendCrossover,
		Mutation:      UniformMutation,
		CrossoverRate: 0.8,
		MutationRate:  0.1,
		SBXEta:        15,
	}
}

// GeneticAlgorithm is a generational GA with single-individual elitism. The
// whole population is replaced every step; the best point found so far is
// always carried over as the first individual.
type GeneticAlgorithm struct {
	population
	next []optimization.Candidate
}

// NewGeneticAlgorithm returns a GA drawing from rng and reading cfg.
func NewGeneticAlgorithm(rng Rand, cfg *Config) *GeneticAlgorithm {
	return &GeneticAlgorithm{population: newPopulation(GAID, rng, cfg)}
}

func (g *GeneticAlgorithm) Init(l landscape.Landscape) error {
	if err := g.validate(l); err != nil {
		return err
	}
	p := g.cfg.GA
	if !p.Selection.valid() {
		return invalid(g.id, "unknown selection operator %q", p.Selection)
	}
	if !p.Crossover.valid() {
		return invalid(g.id, "unknown crossover operator %q", p.Crossover)
	}
	if !p.Mutation.valid() {
		return invalid(g.id, "unknown mutation operator %q", p.Mutation)
	}
	if !inUnit(p.CrossoverRate) || !inUnit(p.MutationRate) {
		return invalid(g.id, "rates must be in [0, 1], got crossover=%v mutation=%v", p.CrossoverRate, p.MutationRate)
	}
	if !(p.SBXEta >= 0) || !finite(p.SBXEta) {
		return invalid(g.id, "SBX distribution index must be non-negative, got %v", p.SBXEta)
	}
	g.reset()
	g.seed(l)
	return nil
}

func (g *GeneticAlgorithm) Step(l landscape.Landscape) {
	n := len(g.particles)
	if n == 0 {
		return
	}
	p := g.cfg.GA
	b := l.Bounds()

	next := g.next[:0]
	next = append(next, optimization.Candidate{
		ID:  0,
		X:   g.best.X,
		Z:   g.best.Z,
		Val: l.F(g.best.X, g.best.Z),
	})

	sel := selector(p.Selection, g.rng, g.particles)
	for len(next) < n {
		p1 := sel()
		p2 := sel()

		x, z := p1.X, p1.Z
		if g.rng.Next() < p.CrossoverRate {
			x, z = crossover(p.Crossover, g.rng, p1, p2, p.SBXEta)
		}
		if g.rng.Next() < p.MutationRate {
			x, z = mutate(p.Mutation, g.rng, x, z, b)
		}

		x, z = clamp(x, b), clamp(z, b)
		next = append(next, optimization.Candidate{
			ID:  len(next),
			X:   x,
			Z:   z,
			Val: l.F(x, z),
		})
	}

	g.next = g.particles
	g.particles = next
	g.observeAll()
}

func (g *GeneticAlgorithm) Params() []optimization.Param {
	p := g.cfg.GA
	return []optimization.Param{
		{Name: "selection", Value: string(p.Selection)},
		{Name: "crossover", Value: string(p.Crossover)},
		{Name: "mutation", Value: string(p.Mutation)},
		{Name: "crossoverRate", Value: formatFloat(p.CrossoverRate)},
		{Name: "mutationRate", Value: formatFloat(p.MutationRate)},
		{Name: "sbxEta", Value: formatFloat(p.SBXEta)},
	}
}
