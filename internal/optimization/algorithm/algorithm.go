// Package algorithm implements the stepwise population-based optimizers.
//
// Each Algorithm owns its population and best-so-far point. Init seeds a
// fresh population from the injected random stream and Step advances it by
// exactly one generation. Parameters live in a Config owned by the caller and
// are re-read on every call, so edits take effect on the next generation.
// Algorithms are not safe for concurrent use.
package algorithm

import (
	"math"
	"sort"

	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
)

// ID identifies an algorithm variant.
type ID string

const (
	CuckooID ID = "cuckoo"
	PSOID    ID = "pso"
	GAID     ID = "ga"
	SAID     ID = "sa"
	RandomID ID = "random"
)

// Rand is the uniform stream the algorithms draw from.
type Rand interface {
	// Next returns a uniform float64 in [0, 1).
	Next() float64
	// NextInt returns an integer in [min, max).
	NextInt(min, max int) int
}

// Algorithm is a stepwise minimiser over a two-dimensional landscape.
type Algorithm interface {
	// ID returns the variant identifier.
	ID() ID
	// Init discards any previous run and seeds a new population.
	Init(l landscape.Landscape) error
	// Step advances the population by one generation. It is a no-op before
	// the first successful Init.
	Step(l landscape.Landscape)
	// Particles returns a copy of the current population.
	Particles() []optimization.Candidate
	// Best returns the lowest point seen since the last Init.
	Best() optimization.Point
	// Params lists the variant's current settings.
	Params() []optimization.Param
}

// Config holds the population size and every variant's parameters.
type Config struct {
	PopSize int          `json:"pop_size"`
	Cuckoo  CuckooParams `json:"cuckoo"`
	PSO     PSOParams    `json:"pso"`
	GA      GAParams     `json:"ga"`
	SA      SAParams     `json:"sa"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		PopSize: 50,
		Cuckoo:  DefaultCuckooParams(),
		PSO:     DefaultPSOParams(),
		GA:      DefaultGAParams(),
		SA:      DefaultSAParams(),
	}
}

var constructors = map[ID]func(Rand, *Config) Algorithm{
	CuckooID: func(r Rand, c *Config) Algorithm { return NewCuckooSearch(r, c) },
	PSOID:    func(r Rand, c *Config) Algorithm { return NewPSO(r, c) },
	GAID:     func(r Rand, c *Config) Algorithm { return NewGeneticAlgorithm(r, c) },
	SAID:     func(r Rand, c *Config) Algorithm { return NewSimulatedAnnealing(r, c) },
	RandomID: func(r Rand, c *Config) Algorithm { return NewRandomSearch(r, c) },
}

// New builds the algorithm named id. An unknown id yields an error matching
// optimization.ErrNotFound.
func New(id ID, rng Rand, cfg *Config) (Algorithm, error) {
	ctor, ok := constructors[id]
	if !ok {
		return nil, optimization.NotFoundf("unknown algorithm %q", id).
			WithComponent("algorithm").
			WithOperation("New")
	}
	if rng == nil || cfg == nil {
		return nil, optimization.InvalidArgumentf("random source and config are required").
			WithComponent("algorithm").
			WithOperation("New")
	}
	return ctor(rng, cfg), nil
}

// IDs lists the known variants in a stable order.
func IDs() []ID {
	ids := make([]ID, 0, len(constructors))
	for id := range constructors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func invalid(id ID, format string, args ...interface{}) error {
	return optimization.InvalidArgumentf(format, args...).
		WithComponent(string(id)).
		WithOperation("Init")
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
