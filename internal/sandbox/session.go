// Package sandbox drives one interactive optimization run: it owns the
// random source, the landscapes and the algorithms, counts generations and
// records the per-generation statistics of every run for export.
package sandbox

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/algorithm"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
	"github.com/copyleftdev/swarmlab/internal/optimization/random"
)

// ErrGenerationLimit is returned by Step once MaxGenerations generations
// have run since the last reset.
var ErrGenerationLimit = errors.New("generation limit reached")

// Settings is the configuration of a session. Algorithms and Landscapes are
// read live by the engine; the remaining fields take effect on reset.
type Settings struct {
	Algorithm      algorithm.ID `json:"algorithm"`
	Landscape      landscape.ID `json:"landscape"`
	Seed           uint32       `json:"seed"`
	Epsilon        float64      `json:"epsilon"`
	MaxGenerations int          `json:"max_generations"`

	Algorithms algorithm.Config `json:"algorithms"`
	Landscapes landscape.Params `json:"landscapes"`
}

// DefaultSettings returns Cuckoo Search on Ackley with 50 candidates,
// seed 12345 and a success threshold of 0.1.
func DefaultSettings() Settings {
	return Settings{
		Algorithm:  algorithm.CuckooID,
		Landscape:  landscape.AckleyID,
		Seed:       random.DefaultSeed,
		Epsilon:    0.1,
		Algorithms: algorithm.DefaultConfig(),
		Landscapes: landscape.DefaultParams(),
	}
}

// RunMeta describes the configuration a run was started with.
type RunMeta struct {
	Algorithm  algorithm.ID         `json:"algorithm"`
	Landscape  landscape.ID         `json:"landscape"`
	PopSize    int                  `json:"pop_size"`
	Epsilon    float64              `json:"epsilon"`
	Seed       uint32               `json:"seed"`
	AlgoParams []optimization.Param `json:"algo_params"`
}

// Run is the recorded history of one run.
type Run struct {
	ID      int               `json:"id"`
	Meta    RunMeta           `json:"meta"`
	History []GenerationStats `json:"history"`
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	Generation  int                      `json:"generation"`
	Algorithm   algorithm.ID             `json:"algorithm"`
	Landscape   landscape.ID             `json:"landscape"`
	Bounds      float64                  `json:"bounds"`
	Particles   []optimization.Candidate `json:"particles"`
	Best        optimization.Point       `json:"best"`
	Temperature *float64                 `json:"temperature,omitempty"`
	Comparing   bool                     `json:"comparing"`
	Runs        int                      `json:"runs"`
	Settings    Settings                 `json:"settings"`
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics reports session activity to m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// Session is a single sandbox. All methods are safe for concurrent use;
// calls are serialised so a step never observes a half-applied edit.
type Session struct {
	mu sync.Mutex

	settings   Settings
	rng        *random.Source
	algorithms map[algorithm.ID]algorithm.Algorithm
	landscapes map[landscape.ID]landscape.Landscape
	algo       algorithm.Algorithm
	land       landscape.Landscape

	gen       int
	comparing bool
	runCount  int
	current   Run
	archive   []Run
	heatmap   *Heatmap

	logger  *zap.Logger
	metrics *Metrics
}

// New validates settings and returns a session positioned at generation 0.
func New(settings Settings, opts ...Option) (*Session, error) {
	if err := check(settings); err != nil {
		return nil, err
	}

	s := &Session{
		settings:   settings,
		rng:        random.New(settings.Seed),
		algorithms: make(map[algorithm.ID]algorithm.Algorithm),
		landscapes: make(map[landscape.ID]landscape.Landscape),
		heatmap:    NewHeatmap(HeatmapSize),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Every variant is built once against the session-owned records so live
	// edits reach whichever one is active.
	for _, id := range landscape.IDs() {
		l, err := landscape.New(id, &s.settings.Landscapes)
		if err != nil {
			return nil, err
		}
		s.landscapes[id] = l
	}
	for _, id := range algorithm.IDs() {
		a, err := algorithm.New(id, s.rng, &s.settings.Algorithms)
		if err != nil {
			return nil, err
		}
		s.algorithms[id] = a
	}
	s.algo = s.algorithms[settings.Algorithm]
	s.land = s.landscapes[settings.Landscape]

	if err := s.reset(false); err != nil {
		return nil, err
	}
	return s, nil
}

// check validates settings by initialising a scratch copy of the selected
// algorithm on the selected landscape.
func check(settings Settings) error {
	if !(settings.Epsilon >= 0) {
		return optimization.InvalidArgumentf("epsilon must be non-negative, got %v", settings.Epsilon).
			WithComponent("sandbox")
	}
	if settings.MaxGenerations < 0 {
		return optimization.InvalidArgumentf("max generations must be non-negative, got %d", settings.MaxGenerations).
			WithComponent("sandbox")
	}
	l, err := landscape.New(settings.Landscape, &settings.Landscapes)
	if err != nil {
		return err
	}
	a, err := algorithm.New(settings.Algorithm, random.New(settings.Seed), &settings.Algorithms)
	if err != nil {
		return err
	}
	return a.Init(l)
}

// reset reseeds the random source, re-initialises the active algorithm and
// opens a new run. The current run is archived when it has data; the
// archive is cleared unless keepPrevious is set.
func (s *Session) reset(keepPrevious bool) error {
	s.rng.SetSeed(s.settings.Seed)
	s.rng.Reset()
	if err := s.algo.Init(s.land); err != nil {
		return optimization.WrapError(err, "reset failed").WithComponent("sandbox")
	}
	s.gen = 0

	if len(s.current.History) > 0 {
		s.archive = append(s.archive, s.current)
	}
	if !keepPrevious {
		s.archive = nil
		s.runCount = 0
	}
	s.openRun()
	s.heatmap.Reset()

	s.metrics.reset(s.settings.Algorithm, s.settings.Landscape)
	s.logger.Debug("run reset",
		zap.Int("run", s.runCount),
		zap.String("algorithm", string(s.settings.Algorithm)),
		zap.String("landscape", string(s.settings.Landscape)),
		zap.Uint32("seed", s.settings.Seed),
		zap.Bool("keep_previous", keepPrevious),
	)
	return nil
}

// openRun starts a new run numbered after the last one, described by the
// current settings.
func (s *Session) openRun() {
	s.runCount++
	s.current = Run{
		ID: s.runCount,
		Meta: RunMeta{
			Algorithm:  s.settings.Algorithm,
			Landscape:  s.settings.Landscape,
			PopSize:    s.settings.Algorithms.PopSize,
			Epsilon:    s.settings.Epsilon,
			Seed:       s.settings.Seed,
			AlgoParams: s.algo.Params(),
		},
	}
}

// Reset restarts the run from the configured seed. With keepPrevious the
// finished run is kept for comparison; without it comparison mode ends and
// every recorded run is discarded.
func (s *Session) Reset(keepPrevious bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !keepPrevious {
		s.comparing = false
	}
	return s.reset(keepPrevious)
}

// SetComparison turns comparison mode on or off. In comparison mode resets
// caused by switching algorithms or editing settings keep earlier runs.
func (s *Session) SetComparison(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comparing = on
}

// Step advances the active algorithm by one generation and records its
// statistics.
func (s *Session) Step() (GenerationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step()
}

func (s *Session) step() (GenerationStats, error) {
	if limit := s.settings.MaxGenerations; limit > 0 && s.gen >= limit {
		return GenerationStats{}, ErrGenerationLimit
	}

	start := time.Now()
	s.algo.Step(s.land)
	elapsed := time.Since(start)
	s.gen++

	particles := s.algo.Particles()
	best := s.algo.Best()
	s.heatmap.Add(particles, s.land.Bounds())

	stats := computeStats(s.gen, particles, best.Val, s.settings.Epsilon)
	s.current.History = append(s.current.History, stats)

	s.metrics.step(s.settings.Algorithm, s.settings.Landscape, best.Val, elapsed)
	return stats, nil
}

// Run advances up to n generations. It stops early when ctx is done or the
// generation limit is reached, returning the statistics gathered so far
// with the cause.
func (s *Session) Run(ctx context.Context, n int) ([]GenerationStats, error) {
	if n < 0 {
		return nil, optimization.InvalidArgumentf("generation count must be non-negative, got %d", n).
			WithComponent("sandbox").WithOperation("Run")
	}
	out := make([]GenerationStats, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		st, err := s.Step()
		if err != nil {
			return out, err
		}
		out = append(out, st)
	}
	return out, nil
}

// SwitchAlgorithm activates the algorithm with the given id and resets. An
// unknown id leaves the session untouched.
func (s *Session) SwitchAlgorithm(id algorithm.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.algorithms[id]
	if !ok {
		return optimization.NotFoundf("unknown algorithm %q", id).WithComponent("sandbox").WithOperation("SwitchAlgorithm")
	}
	next := s.settings
	next.Algorithm = id
	if err := check(next); err != nil {
		return err
	}

	s.settings.Algorithm = id
	s.algo = a
	return s.reset(s.comparing)
}

// SwitchLandscape activates the landscape with the given id and resets.
// Earlier runs are no longer comparable, so comparison mode ends. An unknown
// id leaves the session untouched.
func (s *Session) SwitchLandscape(id landscape.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.landscapes[id]
	if !ok {
		return optimization.NotFoundf("unknown landscape %q", id).WithComponent("sandbox").WithOperation("SwitchLandscape")
	}
	next := s.settings
	next.Landscape = id
	if err := check(next); err != nil {
		return err
	}

	s.settings.Landscape = id
	s.land = l
	s.comparing = false
	return s.reset(false)
}

// UpdateParams applies a live edit of the variant parameters, the success
// threshold or the generation limit. The change is seen by the next step
// without re-initialising the population. Edits to the algorithm, the
// landscape, the seed or the population size need Configure.
//
// Changing landscape parameters in comparison mode invalidates the earlier
// runs: comparison mode ends and the session resets. Changing the active
// algorithm's parameters or the threshold mid-run starts a new run so every
// exported row carries the values it was produced under.
func (s *Session) UpdateParams(edit func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	edit(&next)

	if next.Algorithm != s.settings.Algorithm ||
		next.Landscape != s.settings.Landscape ||
		next.Seed != s.settings.Seed ||
		next.Algorithms.PopSize != s.settings.Algorithms.PopSize {
		return optimization.InvalidArgumentf("algorithm, landscape, seed and population size cannot change live").
			WithComponent("sandbox").WithOperation("UpdateParams")
	}
	if err := check(next); err != nil {
		return err
	}

	terrainChanged := next.Landscapes != s.settings.Landscapes
	epsilonChanged := next.Epsilon != s.settings.Epsilon
	s.settings = next
	if terrainChanged && s.comparing {
		s.comparing = false
		return s.reset(false)
	}
	if epsilonChanged || !slices.Equal(s.current.Meta.AlgoParams, s.algo.Params()) {
		s.relabel()
	}
	return nil
}

// relabel makes the run metadata match edited settings. Generations already
// recorded were produced under the old values, so they are archived as
// their own run and a new run continues from the same population and
// generation count.
func (s *Session) relabel() {
	if len(s.current.History) == 0 {
		s.current.Meta.Epsilon = s.settings.Epsilon
		s.current.Meta.AlgoParams = s.algo.Params()
		return
	}
	s.archive = append(s.archive, s.current)
	s.openRun()
	s.logger.Debug("run split by live edit",
		zap.Int("run", s.runCount),
		zap.Int("generation", s.gen),
	)
}

// Configure replaces every setting and resets. Invalid settings leave the
// session untouched.
func (s *Session) Configure(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := check(settings); err != nil {
		return err
	}
	keep := s.comparing
	if settings.Landscape != s.settings.Landscape || settings.Landscapes != s.settings.Landscapes {
		keep = false
		s.comparing = false
	}

	s.settings = settings
	s.algo = s.algorithms[settings.Algorithm]
	s.land = s.landscapes[settings.Landscape]
	return s.reset(keep)
}

// Settings returns a copy of the current settings.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Generation returns the number of generations since the last reset.
func (s *Session) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Snapshot returns the current population and best point.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Generation: s.gen,
		Algorithm:  s.settings.Algorithm,
		Landscape:  s.settings.Landscape,
		Bounds:     s.land.Bounds(),
		Particles:  s.algo.Particles(),
		Best:       s.algo.Best(),
		Comparing:  s.comparing,
		Runs:       len(s.archive) + 1,
		Settings:   s.settings,
	}
	if sa, ok := s.algo.(interface{ Temperature() float64 }); ok {
		t := sa.Temperature()
		snap.Temperature = &t
	}
	return snap
}

// Runs returns the archived runs followed by the active one when it has
// recorded at least one generation.
func (s *Session) Runs() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs()
}

func (s *Session) runs() []Run {
	out := make([]Run, 0, len(s.archive)+1)
	for _, r := range s.archive {
		out = append(out, copyRun(r))
	}
	if len(s.current.History) > 0 {
		out = append(out, copyRun(s.current))
	}
	return out
}

func copyRun(r Run) Run {
	r.History = append([]GenerationStats(nil), r.History...)
	r.Meta.AlgoParams = append([]optimization.Param(nil), r.Meta.AlgoParams...)
	return r
}

// Heatmap returns a copy of the visit grid accumulated since the last reset.
func (s *Session) Heatmap() *Heatmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heatmap.Clone()
}
