package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	g, err := Build(2544, 1691, 4)
	require.NoError(t, err)

	assert.Equal(t, 636, g.NumX)
	assert.Equal(t, 422, g.NumY)
	assert.Equal(t, 636*422, g.Len())

	assert.Equal(t, 0.0, g.Xs[0])
	assert.Equal(t, 2544.0, g.Xs[g.NumX-1])
	assert.Equal(t, 0.0, g.Ys[0])
	assert.Equal(t, 1691.0, g.Ys[g.NumY-1])
}

func TestBuild_EvenSpacing(t *testing.T) {
	g, err := Build(10, 10, 3)
	require.NoError(t, err)

	require.Equal(t, 3, g.NumX)
	require.Equal(t, 3, g.NumY)
	assert.Equal(t, []float64{0, 5, 10}, g.Xs)
	assert.Equal(t, []float64{0, 5, 10}, g.Ys)
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build(1024, 768, 7)
	require.NoError(t, err)
	b, err := Build(1024, 768, 7)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestBuild_AspectRatio(t *testing.T) {
	tests := []struct {
		w, h, d int
	}{
		{2544, 1691, 4},
		{800, 600, 10},
		{600, 800, 10},
		{1000, 250, 5},
		{333, 777, 3},
	}

	for _, tt := range tests {
		g, err := Build(tt.w, tt.h, tt.d)
		require.NoError(t, err)

		want := float64(tt.h) / float64(tt.w)
		got := float64(g.NumY) / float64(g.NumX)

		// flooring numY loses at most one row
		assert.LessOrEqual(t, math.Abs(want-got), 1/float64(g.NumX)+1e-9, "%dx%d/%d", tt.w, tt.h, tt.d)
	}
}

func TestBuild_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		w, h, d int
	}{
		{"too narrow", 1, 10, 10},
		{"single column", 10, 10, 10},
		{"flat", 1000, 1, 10},
		{"zero divisor", 100, 100, 0},
		{"zero width", 0, 100, 1},
		{"negative height", 100, -5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.w, tt.h, tt.d)
			assert.Nil(t, g)

			var dge *DegenerateGridError
			require.ErrorAs(t, err, &dge)
		})
	}
}

func TestBuild_DegenerateReportsCounts(t *testing.T) {
	_, err := Build(1, 10, 10)

	var dge *DegenerateGridError
	require.ErrorAs(t, err, &dge)
	assert.Equal(t, 0, dge.NumX)
}

func TestGrid_PointsOrder(t *testing.T) {
	g, err := Build(20, 10, 5)
	require.NoError(t, err)
	require.Equal(t, 4, g.NumX)
	require.Equal(t, 2, g.NumY)

	points := g.Points()
	require.Len(t, points, g.Len())

	// y is the outer axis
	for i := 0; i < g.NumX; i++ {
		assert.Equal(t, 0.0, points[i][1])
	}
	assert.Equal(t, [2]float64{20, 10}, points[len(points)-1])

	for i, p := range points {
		x, y := g.At(i)
		assert.Equal(t, p, [2]float64{x, y})
	}
}
