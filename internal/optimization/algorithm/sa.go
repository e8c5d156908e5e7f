package algorithm

import (
	"math"

	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
)

// MinTemperature is the floor the cooling schedule never goes below.
const MinTemperature = 0.001

// neighbourScale is the proposal width at the initial temperature, as a
// fraction of the bounds.
const neighbourScale = 0.1

// SAParams tunes Simulated Annealing.
type SAParams struct {
	InitialTemp float64 `json:"initial_temp"`
	CoolingRate float64 `json:"cooling_rate"`
}

// DefaultSAParams returns temp=1000, coolingRate=0.99.
func DefaultSAParams() SAParams {
	return SAParams{InitialTemp: 1000, CoolingRate: 0.99}
}

// SimulatedAnnealing runs one annealing chain per candidate, all sharing a
// geometric cooling schedule.
type SimulatedAnnealing struct {
	population
	temp float64
}

// NewSimulatedAnnealing returns an annealer drawing from rng and reading cfg.
func NewSimulatedAnnealing(rng Rand, cfg *Config) *SimulatedAnnealing {
	return &SimulatedAnnealing{
		population: newPopulation(SAID, rng, cfg),
		temp:       cfg.SA.InitialTemp,
	}
}

func (s *SimulatedAnnealing) Init(l landscape.Landscape) error {
	if err := s.validate(l); err != nil {
		return err
	}
	p := s.cfg.SA
	if !(p.InitialTemp > 0) || !finite(p.InitialTemp) {
		return invalid(s.id, "initial temperature must be positive, got %v", p.InitialTemp)
	}
	if !(p.CoolingRate > 0 && p.CoolingRate <= 1) {
		return invalid(s.id, "cooling rate must be in (0, 1], got %v", p.CoolingRate)
	}
	s.reset()
	s.temp = p.InitialTemp
	s.seed(l)
	return nil
}

func (s *SimulatedAnnealing) Step(l landscape.Landscape) {
	if len(s.particles) == 0 {
		return
	}
	p := s.cfg.SA
	b := l.Bounds()
	width := b * neighbourScale * (s.temp / p.InitialTemp)

	for i := range s.particles {
		cur := &s.particles[i]
		nx := clamp(cur.X+(s.rng.Next()*2-1)*width, b)
		nz := clamp(cur.Z+(s.rng.Next()*2-1)*width, b)
		nv := l.F(nx, nz)

		delta := nv - cur.Val
		if delta < 0 || s.rng.Next() < math.Exp(-delta/s.temp) {
			cur.X, cur.Z, cur.Val = nx, nz, nv
			s.observe(cur.Point())
		}
	}

	s.temp *= p.CoolingRate
	if s.temp < MinTemperature {
		s.temp = MinTemperature
	}
}

// Temperature returns the current temperature of the schedule.
func (s *SimulatedAnnealing) Temperature() float64 {
	return s.temp
}

func (s *SimulatedAnnealing) Params() []optimization.Param {
	p := s.cfg.SA
	return []optimization.Param{
		{Name: "temp", Value: formatFloat(p.InitialTemp)},
		{Name: "coolingRate", Value: formatFloat(p.CoolingRate)},
	}
}
