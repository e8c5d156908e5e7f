package algorithm

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
	"github.com/copyleftdev/swarmlab/internal/optimization/random"
)

// flatLandscape is a constant surface with configurable bounds.
type flatLandscape struct {
	bounds float64
}

func (f flatLandscape) ID() landscape.ID            { return "flat" }
func (f flatLandscape) F(x, z float64) float64      { return 1 }
func (f flatLandscape) Bounds() float64             { return f.bounds }
func (f flatLandscape) Optimum() (float64, float64) { return 0, 0 }
func (f flatLandscape) Description() string         { return "flat" }

func testLandscapes(t *testing.T, params *landscape.Params) []landscape.Landscape {
	t.Helper()
	out := make([]landscape.Landscape, 0, len(landscape.IDs()))
	for _, id := range landscape.IDs() {
		l, err := landscape.New(id, params)
		require.NoError(t, err)
		out = append(out, l)
	}
	return out
}

func newAlgorithm(t *testing.T, id ID, seed uint32, cfg *Config) Algorithm {
	t.Helper()
	a, err := New(id, random.New(seed), cfg)
	require.NoError(t, err)
	return a
}

func minVal(ps []optimization.Candidate) float64 {
	m := math.Inf(1)
	for _, p := range ps {
		m = math.Min(m, p.Val)
	}
	return m
}

// checkInvariants asserts the properties every algorithm keeps after Init
// and after each Step.
func checkInvariants(t *testing.T, a Algorithm, l landscape.Landscape, popSize int, prevBest float64) float64 {
	t.Helper()
	ps := a.Particles()
	require.Len(t, ps, popSize)

	b := l.Bounds()
	for _, p := range ps {
		want := l.F(p.X, p.Z)
		require.InDelta(t, want, p.Val, 1e-9*math.Max(1, math.Abs(want)), "val must equal f(x, z)")
		require.LessOrEqual(t, math.Abs(p.X), b, "x out of bounds")
		require.LessOrEqual(t, math.Abs(p.Z), b, "z out of bounds")
	}

	best := a.Best()
	require.LessOrEqual(t, best.Val, prevBest, "best must never increase")
	require.LessOrEqual(t, best.Val, minVal(ps), "best must cover the current population")
	require.InDelta(t, l.F(best.X, best.Z), best.Val, 1e-9*math.Max(1, math.Abs(best.Val)))
	return best.Val
}

func TestAlgorithmInvariants(t *testing.T) {
	params := landscape.DefaultParams()
	lands := testLandscapes(t, &params)

	for _, id := range IDs() {
		for _, l := range lands {
			t.Run(fmt.Sprintf("%s/%s", id, l.ID()), func(t *testing.T) {
				cfg := DefaultConfig()
				cfg.PopSize = 20
				a := newAlgorithm(t, id, 12345, &cfg)
				assert.Equal(t, id, a.ID())

				require.NoError(t, a.Init(l))
				best := checkInvariants(t, a, l, cfg.PopSize, math.Inf(1))
				for step := 0; step < 60; step++ {
					a.Step(l)
					best = checkInvariants(t, a, l, cfg.PopSize, best)
				}
			})
		}
	}
}

func TestAlgorithmDeterminism(t *testing.T) {
	params := landscape.DefaultParams()
	l, err := landscape.New(landscape.RastriginID, &params)
	require.NoError(t, err)

	trajectory := func(id ID) [][]optimization.Candidate {
		cfg := DefaultConfig()
		cfg.PopSize = 15
		src := random.New(99)
		a, err := New(id, src, &cfg)
		require.NoError(t, err)

		// Consume some draws, then rewind the way the driver does.
		src.Next()
		src.SetSeed(7)
		src.Reset()

		require.NoError(t, a.Init(l))
		out := [][]optimization.Candidate{a.Particles()}
		for i := 0; i < 25; i++ {
			a.Step(l)
			out = append(out, a.Particles())
		}
		return out
	}

	for _, id := range IDs() {
		t.Run(string(id), func(t *testing.T) {
			assert.Equal(t, trajectory(id), trajectory(id))
		})
	}
}

func TestReinitDiscardsPreviousRun(t *testing.T) {
	params := landscape.DefaultParams()
	l, err := landscape.New(landscape.SphereID, &params)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.PopSize = 10
	src := random.New(3)
	a, err := New(PSOID, src, &cfg)
	require.NoError(t, err)

	require.NoError(t, a.Init(l))
	first := a.Particles()
	for i := 0; i < 10; i++ {
		a.Step(l)
	}

	cfg.PopSize = 12
	src.Reset()
	require.NoError(t, a.Init(l))
	second := a.Particles()
	require.Len(t, second, 12)
	assert.Equal(t, first[0].X, second[0].X, "same stream position yields the same first particle")
	assert.Equal(t, minVal(second), a.Best().Val, "best is rebuilt from the new population")
}

func TestStepBeforeInit(t *testing.T) {
	params := landscape.DefaultParams()
	l, err := landscape.New(landscape.SphereID, &params)
	require.NoError(t, err)

	for _, id := range IDs() {
		t.Run(string(id), func(t *testing.T) {
			cfg := DefaultConfig()
			a := newAlgorithm(t, id, 1, &cfg)
			assert.NotPanics(t, func() { a.Step(l) })
			assert.Empty(t, a.Particles())
			assert.True(t, math.IsInf(a.Best().Val, 1))
		})
	}
}

func TestInitValidation(t *testing.T) {
	params := landscape.DefaultParams()
	sphere, err := landscape.New(landscape.SphereID, &params)
	require.NoError(t, err)

	tests := []struct {
		name   string
		id     ID
		l      landscape.Landscape
		mutate func(*Config)
	}{
		{"zero population", RandomID, sphere, func(c *Config) { c.PopSize = 0 }},
		{"negative population", PSOID, sphere, func(c *Config) { c.PopSize = -4 }},
		{"zero bounds", CuckooID, flatLandscape{bounds: 0}, nil},
		{"infinite bounds", SAID, flatLandscape{bounds: math.Inf(1)}, nil},
		{"nil landscape", GAID, nil, nil},
		{"discovery rate above one", CuckooID, sphere, func(c *Config) { c.Cuckoo.Pa = 1.5 }},
		{"negative levy scale", CuckooID, sphere, func(c *Config) { c.Cuckoo.LevyScale = -1 }},
		{"nan inertia", PSOID, sphere, func(c *Config) { c.PSO.W = math.NaN() }},
		{"unknown selection", GAID, sphere, func(c *Config) { c.GA.Selection = "lottery" }},
		{"unknown crossover", GAID, sphere, func(c *Config) { c.GA.Crossover = "splice" }},
		{"unknown mutation", GAID, sphere, func(c *Config) { c.GA.Mutation = "flip" }},
		{"mutation rate above one", GAID, sphere, func(c *Config) { c.GA.MutationRate = 2 }},
		{"negative sbx eta", GAID, sphere, func(c *Config) { c.GA.SBXEta = -1 }},
		{"zero temperature", SAID, sphere, func(c *Config) { c.SA.InitialTemp = 0 }},
		{"zero cooling rate", SAID, sphere, func(c *Config) { c.SA.CoolingRate = 0 }},
		{"cooling rate above one", SAID, sphere, func(c *Config) { c.SA.CoolingRate = 1.01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			a := newAlgorithm(t, tt.id, 1, &cfg)
			err := a.Init(tt.l)
			require.Error(t, err)
			assert.True(t, errors.Is(err, optimization.ErrInvalidArgument), "got %v", err)
			assert.Empty(t, a.Particles(), "failed init leaves no population")
		})
	}
}

func TestNewUnknownAlgorithm(t *testing.T) {
	cfg := DefaultConfig()
	_, err := New("ant_colony", random.New(1), &cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, optimization.ErrNotFound))

	_, err = New(PSOID, nil, &cfg)
	assert.True(t, errors.Is(err, optimization.ErrInvalidArgument))
}

func TestParams(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		id   ID
		want []optimization.Param
	}{
		{CuckooID, []optimization.Param{{Name: "pa", Value: "0.25"}, {Name: "levyScale", Value: "0.2"}}},
		{PSOID, []optimization.Param{{Name: "w", Value: "0.7"}, {Name: "c1", Value: "1.5"}, {Name: "c2", Value: "1.5"}}},
		{SAID, []optimization.Param{{Name: "temp", Value: "1000"}, {Name: "coolingRate", Value: "0.99"}}},
		{RandomID, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			a := newAlgorithm(t, tt.id, 1, &cfg)
			assert.Equal(t, tt.want, a.Params())
		})
	}

	ga := newAlgorithm(t, GAID, 1, &cfg)
	assert.Contains(t, ga.Params(), optimization.Param{Name: "selection", Value: "tournament"})

	// Params are read live.
	cfg.PSO.W = 0.3
	pso := newAlgorithm(t, PSOID, 1, &cfg)
	assert.Equal(t, "0.3", pso.Params()[0].Value)
}
