// Package landscape defines the benchmark fitness surfaces the algorithms
// minimise. Every surface is a pure function of two coordinates whose shape
// parameters are read on each evaluation, so edits to a Params record apply
// to the very next call.
package landscape

import (
	"sort"

	"github.com/copyleftdev/swarmlab/internal/optimization"
)

// ID identifies a landscape variant.
type ID string

const (
	AckleyID     ID = "ackley"
	RosenbrockID ID = "rosenbrock"
	RastriginID  ID = "rastrigin"
	SphereID     ID = "sphere"
	SchwefelID   ID = "schwefel"
)

// Landscape is a scalar fitness surface over the square [-Bounds, Bounds]².
type Landscape interface {
	// ID returns the variant identifier.
	ID() ID
	// F evaluates the surface. It has no side effects.
	F(x, z float64) float64
	// Bounds is the half-width of the search square.
	Bounds() float64
	// Optimum is the location of the global minimum under the current params.
	Optimum() (x, z float64)
	// Description is a one-line characterisation of the surface.
	Description() string
}

// Params holds the tunable shape parameters of every variant. The driver
// owns one record and mutates it in place.
type Params struct {
	Ackley     AckleyParams     `json:"ackley"`
	Rosenbrock RosenbrockParams `json:"rosenbrock"`
	Rastrigin  RastriginParams  `json:"rastrigin"`
	Schwefel   SchwefelParams   `json:"schwefel"`
}

// DefaultParams returns the textbook parameterisation of each surface.
func DefaultParams() Params {
	return Params{
		Ackley:     DefaultAckleyParams(),
		Rosenbrock: DefaultRosenbrockParams(),
		Rastrigin:  DefaultRastriginParams(),
		Schwefel:   DefaultSchwefelParams(),
	}
}

var constructors = map[ID]func(*Params) Landscape{
	AckleyID:     func(p *Params) Landscape { return NewAckley(&p.Ackley) },
	RosenbrockID: func(p *Params) Landscape { return NewRosenbrock(&p.Rosenbrock) },
	RastriginID:  func(p *Params) Landscape { return NewRastrigin(&p.Rastrigin) },
	SphereID:     func(*Params) Landscape { return NewSphere() },
	SchwefelID:   func(p *Params) Landscape { return NewSchwefel(&p.Schwefel) },
}

// New builds the landscape named id bound to params. An unknown id yields an
// error matching optimization.ErrNotFound.
func New(id ID, params *Params) (Landscape, error) {
	ctor, ok := constructors[id]
	if !ok {
		return nil, optimization.NotFoundf("unknown landscape %q", id).
			WithComponent("landscape").
			WithOperation("New")
	}
	if params == nil {
		return nil, optimization.InvalidArgumentf("params must not be nil").
			WithComponent("landscape").
			WithOperation("New")
	}
	return ctor(params), nil
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
