package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/swarmlab/internal/optimization"
)

func TestHeatmapSplat(t *testing.T) {
	h := NewHeatmap(HeatmapSize)
	h.Add([]optimization.Candidate{{X: 0, Z: 0}}, 5)

	g := h.Grid()
	assert.Equal(t, 10.0, g.At(128, 128))
	assert.Equal(t, 5.0, g.At(128, 129))
	assert.Equal(t, 5.0, g.At(127, 128))
	assert.Equal(t, 2.5, g.At(127, 127))
	assert.Equal(t, 0.0, g.At(130, 128))
	assert.Equal(t, 40.0, mat.Sum(g))
	assert.Equal(t, 10.0, h.Max())
}

func TestHeatmapEdges(t *testing.T) {
	h := NewHeatmap(8)

	// The upper bound maps to the last cell; the splat is clipped.
	h.Add([]optimization.Candidate{{X: 5, Z: 5}}, 5)
	assert.Equal(t, 10.0, h.Grid().At(7, 7))
	assert.Equal(t, 10.0+5+5+2.5, mat.Sum(h.Grid()))

	// Points outside the square are ignored.
	h.Add([]optimization.Candidate{{X: 6, Z: 0}, {X: 0, Z: -5.01}}, 5)
	assert.Equal(t, 22.5, mat.Sum(h.Grid()))

	h.Add([]optimization.Candidate{{X: 5, Z: 5}}, 5)
	assert.Equal(t, 20.0, h.Max())

	norm := h.Normalized()
	assert.Equal(t, 1.0, norm.At(7, 7))
	assert.Equal(t, 0.5, norm.At(7, 6))

	rows := h.Rows()
	require.Len(t, rows, 8)
	assert.Equal(t, 1.0, rows[7][7])

	clone := h.Clone()
	h.Reset()
	assert.Zero(t, h.Max())
	assert.Zero(t, mat.Sum(h.Grid()))
	assert.Equal(t, 20.0, clone.Max(), "clones are independent")
}
