// Package random provides the seeded uniform generator every algorithm draws
// from. A Source is a pure function of its 32-bit state, so reseeding and
// replaying the same call sequence reproduces identical trajectories.
package random

// increment is the Weyl-sequence step added to the state on every draw.
const increment uint32 = 0x6D2B79F5

// DefaultSeed is the seed used when none is configured.
const DefaultSeed uint32 = 12345

// Source is a Mulberry32 generator. It is not safe for concurrent use; each
// session owns its own Source.
type Source struct {
	seed  uint32
	state uint32
}

// New returns a Source positioned at the start of the stream for seed.
func New(seed uint32) *Source {
	return &Source{seed: seed, state: seed}
}

// Next returns a uniform float64 in [0, 1).
func (s *Source) Next() float64 {
	s.state += increment
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// NextInt returns an integer in [min, max).
func (s *Source) NextInt(min, max int) int {
	return min + int(s.Next()*float64(max-min))
}

// SetSeed replaces the seed and rewinds the stream to it.
func (s *Source) SetSeed(seed uint32) {
	s.seed = seed
	s.state = seed
}

// Reset rewinds the stream to the last seed without changing it.
func (s *Source) Reset() {
	s.state = s.seed
}

// Seed returns the seed the stream rewinds to.
func (s *Source) Seed() uint32 {
	return s.seed
}
