package optimization

import "math"

// Candidate is one point of an algorithm's population together with its
// cached fitness. Val always equals the landscape's value at (X, Z).
type Candidate struct {
	ID  int     `json:"id"`
	X   float64 `json:"x"`
	Z   float64 `json:"z"`
	Val float64 `json:"val"`
}

// Point is a position in the search square with its fitness.
type Point struct {
	X   float64 `json:"x"`
	Z   float64 `json:"z"`
	Val float64 `json:"val"`
}

// Unset returns the best-so-far sentinel used before a run starts.
func Unset() Point {
	return Point{Val: math.Inf(1)}
}

// Point returns the position and fitness of the candidate.
func (c Candidate) Point() Point {
	return Point{X: c.X, Z: c.Z, Val: c.Val}
}

// Param is a named algorithm setting, rendered for run metadata.
type Param struct {
	Name  string
	Value string
}
