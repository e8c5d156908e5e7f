package sandbox

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/swarmlab/internal/optimization"
)

// HeatmapSize is the resolution of a session's visit grid.
const HeatmapSize = 256

// Heatmap accumulates where candidates have been over [-b, b]². Rows index
// z and columns index x, matching landscape.Sample. Each visit is splatted
// over the 3×3 neighbourhood of its cell with weights 10 (centre), 5 (edge)
// and 2.5 (corner).
type Heatmap struct {
	grid *mat.Dense
	max  float64
}

// NewHeatmap returns an empty n×n grid.
func NewHeatmap(n int) *Heatmap {
	if n < 1 {
		n = 1
	}
	return &Heatmap{grid: mat.NewDense(n, n, nil)}
}

// Reset clears every cell.
func (h *Heatmap) Reset() {
	h.grid.Zero()
	h.max = 0
}

// Add records one visit per candidate. Candidates exactly on the upper
// bound fall into the last cell.
func (h *Heatmap) Add(particles []optimization.Candidate, bounds float64) {
	n, _ := h.grid.Dims()
	scale := float64(n) / (2 * bounds)
	for _, p := range particles {
		gx := cell(p.X, bounds, scale, n)
		gz := cell(p.Z, bounds, scale, n)
		if gx < 0 || gz < 0 {
			continue
		}
		for oz := -1; oz <= 1; oz++ {
			for ox := -1; ox <= 1; ox++ {
				r, c := gz+oz, gx+ox
				if r < 0 || r >= n || c < 0 || c >= n {
					continue
				}
				w := float64(2-abs(ox)) * float64(2-abs(oz)) * 2.5
				v := h.grid.At(r, c) + w
				h.grid.Set(r, c, v)
				if v > h.max {
					h.max = v
				}
			}
		}
	}
}

// cell maps a coordinate to its grid index, or -1 when it lies outside.
func cell(v, bounds, scale float64, n int) int {
	if math.IsNaN(v) || v < -bounds || v > bounds {
		return -1
	}
	i := int(math.Floor((v + bounds) * scale))
	if i >= n {
		i = n - 1
	}
	return i
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Grid returns the raw visit weights.
func (h *Heatmap) Grid() mat.Matrix {
	return h.grid
}

// Max returns the largest cell weight.
func (h *Heatmap) Max() float64 {
	return h.max
}

// Normalized returns the grid scaled to [0, 1] by the largest cell.
func (h *Heatmap) Normalized() *mat.Dense {
	var out mat.Dense
	out.CloneFrom(h.grid)
	if h.max > 0 {
		out.Scale(1/h.max, &out)
	}
	return &out
}

// Rows returns the normalized grid as nested slices, row by row.
func (h *Heatmap) Rows() [][]float64 {
	norm := h.Normalized()
	n, _ := norm.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, norm)
	}
	return rows
}

// Clone returns an independent copy.
func (h *Heatmap) Clone() *Heatmap {
	var grid mat.Dense
	grid.CloneFrom(h.grid)
	return &Heatmap{grid: &grid, max: h.max}
}
