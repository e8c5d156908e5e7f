package landscape

import "math"

// AckleyParams shapes the Ackley surface.
type AckleyParams struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// DefaultAckleyParams returns a=20, b=0.2, c=2π.
func DefaultAckleyParams() AckleyParams {
	return AckleyParams{A: 20, B: 0.2, C: 2 * math.Pi}
}

// Ackley is a nearly flat outer region with a deep funnel at the origin,
// covered in regularly spaced local minima.
type Ackley struct {
	params *AckleyParams
}

// NewAckley returns an Ackley surface reading p on every evaluation.
func NewAckley(p *AckleyParams) *Ackley {
	return &Ackley{params: p}
}

func (a *Ackley) ID() ID          { return AckleyID }
func (a *Ackley) Bounds() float64 { return 5 }

func (a *Ackley) F(x, z float64) float64 {
	p := a.params
	term1 := -p.A * math.Exp(-p.B*math.Sqrt(0.5*(x*x+z*z)))
	term2 := -math.Exp(0.5 * (math.Cos(p.C*x) + math.Cos(p.C*z)))
	return term1 + term2 + p.A + math.E
}

func (a *Ackley) Optimum() (float64, float64) { return 0, 0 }

func (a *Ackley) Description() string {
	return "Many smooth cups trap solutions; long jumps are needed to reach the deep centre."
}

// RosenbrockParams shapes the Rosenbrock valley.
type RosenbrockParams struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// DefaultRosenbrockParams returns a=1, b=100.
func DefaultRosenbrockParams() RosenbrockParams {
	return RosenbrockParams{A: 1, B: 100}
}

// Rosenbrock is a long curved valley with its minimum at (a, a²).
type Rosenbrock struct {
	params *RosenbrockParams
}

// NewRosenbrock returns a Rosenbrock surface reading p on every evaluation.
func NewRosenbrock(p *RosenbrockParams) *Rosenbrock {
	return &Rosenbrock{params: p}
}

func (r *Rosenbrock) ID() ID          { return RosenbrockID }
func (r *Rosenbrock) Bounds() float64 { return 2 }

func (r *Rosenbrock) F(x, z float64) float64 {
	p := r.params
	dx := p.A - x
	dz := z - x*x
	return dx*dx + p.B*dz*dz
}

func (r *Rosenbrock) Optimum() (float64, float64) {
	a := r.params.A
	return a, a * a
}

func (r *Rosenbrock) Description() string {
	return "A long curved valley with steep walls; the floor is easy to find, the minimum is not."
}

// RastriginParams shapes the Rastrigin surface.
type RastriginParams struct {
	A float64 `json:"A"`
}

// DefaultRastriginParams returns A=10.
func DefaultRastriginParams() RastriginParams {
	return RastriginParams{A: 10}
}

// Rastrigin is a bowl covered in a dense grid of local minima.
type Rastrigin struct {
	params *RastriginParams
}

// NewRastrigin returns a Rastrigin surface reading p on every evaluation.
func NewRastrigin(p *RastriginParams) *Rastrigin {
	return &Rastrigin{params: p}
}

func (r *Rastrigin) ID() ID          { return RastriginID }
func (r *Rastrigin) Bounds() float64 { return 5.12 }

func (r *Rastrigin) F(x, z float64) float64 {
	a := r.params.A
	return 2*a +
		(x*x - a*math.Cos(2*math.Pi*x)) +
		(z*z - a*math.Cos(2*math.Pi*z))
}

func (r *Rastrigin) Optimum() (float64, float64) { return 0, 0 }

func (r *Rastrigin) Description() string {
	return "A field of needles: hundreds of local minima whose depth is set by A."
}

// Sphere is the convex bowl x² + z².
type Sphere struct{}

// NewSphere returns the parameterless sphere surface.
func NewSphere() *Sphere { return &Sphere{} }

func (s *Sphere) ID() ID                      { return SphereID }
func (s *Sphere) Bounds() float64             { return 5 }
func (s *Sphere) F(x, z float64) float64      { return x*x + z*z }
func (s *Sphere) Optimum() (float64, float64) { return 0, 0 }

func (s *Sphere) Description() string {
	return "A single convex bowl; every method should converge."
}

// SchwefelParams shapes the Schwefel surface.
type SchwefelParams struct {
	Scale float64 `json:"scale"`
}

// DefaultSchwefelParams returns the canonical per-dimension offset.
func DefaultSchwefelParams() SchwefelParams {
	return SchwefelParams{Scale: 418.9829}
}

// schwefelOptimum is the per-axis argmin of -x·sin(√|x|) on [-500, 500].
const schwefelOptimum = 420.9687

// Schwefel is deceptive: the global minimum sits near the domain corner, far
// from the second-best basins.
type Schwefel struct {
	params *SchwefelParams
}

// NewSchwefel returns a Schwefel surface reading p on every evaluation.
func NewSchwefel(p *SchwefelParams) *Schwefel {
	return &Schwefel{params: p}
}

func (s *Schwefel) ID() ID          { return SchwefelID }
func (s *Schwefel) Bounds() float64 { return 500 }

func (s *Schwefel) F(x, z float64) float64 {
	term1 := x * math.Sin(math.Sqrt(math.Abs(x)))
	term2 := z * math.Sin(math.Sqrt(math.Abs(z)))
	return 2*s.params.Scale - (term1 + term2)
}

func (s *Schwefel) Optimum() (float64, float64) { return schwefelOptimum, schwefelOptimum }

func (s *Schwefel) Description() string {
	return "Deceptive: the global minimum is at the edge, far from other deep valleys."
}
