package algorithm

import (
	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
)

// initialVelocityScale bounds the initial velocity as a fraction of the bounds.
const initialVelocityScale = 0.1

// PSOParams tunes Particle Swarm Optimization.
type PSOParams struct {
	// W is the inertia weight.
	W float64 `json:"w"`
	// C1 is the cognitive (personal best) coefficient.
	C1 float64 `json:"c1"`
	// C2 is the social (global best) coefficient.
	C2 float64 `json:"c2"`
}

// DefaultPSOParams returns w=0.7, c1=1.5, c2=1.5.
func DefaultPSOParams() PSOParams {
	return PSOParams{W: 0.7, C1: 1.5, C2: 1.5}
}

type velocity struct {
	x, z float64
}

// PSO is a global-best particle swarm. Positions are clamped to the bounds.
type PSO struct {
	population
	velocities []velocity
	personal   []optimization.Point
}

// NewPSO returns a particle swarm drawing from rng and reading cfg.
func NewPSO(rng Rand, cfg *Config) *PSO {
	return &PSO{population: newPopulation(PSOID, rng, cfg)}
}

func (s *PSO) Init(l landscape.Landscape) error {
	if err := s.validate(l); err != nil {
		return err
	}
	p := s.cfg.PSO
	if !finite(p.W) || !finite(p.C1) || !finite(p.C2) {
		return invalid(s.id, "coefficients must be finite, got w=%v c1=%v c2=%v", p.W, p.C1, p.C2)
	}

	s.reset()
	s.velocities = make([]velocity, 0, s.cfg.PopSize)
	s.personal = make([]optimization.Point, 0, s.cfg.PopSize)

	b := l.Bounds()
	vmax := b * initialVelocityScale
	for i := 0; i < s.cfg.PopSize; i++ {
		x, z := s.uniform(b)
		vx := (s.rng.Next()*2 - 1) * vmax
		vz := (s.rng.Next()*2 - 1) * vmax
		s.add(l, i, x, z)
		s.velocities = append(s.velocities, velocity{x: vx, z: vz})
		s.personal = append(s.personal, s.particles[i].Point())
	}
	return nil
}

func (s *PSO) Step(l landscape.Landscape) {
	if len(s.particles) == 0 {
		return
	}
	p := s.cfg.PSO
	b := l.Bounds()

	for i := range s.particles {
		part := &s.particles[i]
		v := &s.velocities[i]
		pb := s.personal[i]

		r1x, r1z := s.rng.Next(), s.rng.Next()
		r2x, r2z := s.rng.Next(), s.rng.Next()

		v.x = p.W*v.x + p.C1*r1x*(pb.X-part.X) + p.C2*r2x*(s.best.X-part.X)
		v.z = p.W*v.z + p.C1*r1z*(pb.Z-part.Z) + p.C2*r2z*(s.best.Z-part.Z)

		part.X = clamp(part.X+v.x, b)
		part.Z = clamp(part.Z+v.z, b)
		part.Val = l.F(part.X, part.Z)

		if part.Val < pb.Val {
			s.personal[i] = part.Point()
		}
		s.observe(part.Point())
	}
}

// PersonalBest returns the best point particle i has visited.
func (s *PSO) PersonalBest(i int) optimization.Point {
	return s.personal[i]
}

func (s *PSO) Params() []optimization.Param {
	p := s.cfg.PSO
	return []optimization.Param{
		{Name: "w", Value: formatFloat(p.W)},
		{Name: "c1", Value: formatFloat(p.C1)},
		{Name: "c2", Value: formatFloat(p.C2)},
	}
}
