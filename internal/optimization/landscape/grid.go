package landscape

import "gonum.org/v1/gonum/mat"

// Sample evaluates l on an n×n lattice spanning [-b, b]². Row i holds z and
// column j holds x, both increasing. n below 2 is raised to 2.
func Sample(l Landscape, n int) *mat.Dense {
	if n < 2 {
		n = 2
	}
	b := l.Bounds()
	step := 2 * b / float64(n-1)

	grid := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		z := -b + float64(i)*step
		for j := 0; j < n; j++ {
			x := -b + float64(j)*step
			grid.Set(i, j, l.F(x, z))
		}
	}
	return grid
}
