package rbf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/survey-heatmap/internal/grid"
)

func TestInterpolate_RoundTrip(t *testing.T) {
	m, err := Fit([]Point{{0, 0}, {10, 0}, {0, 10}}, []float64{-40, -60, -80})
	require.NoError(t, err)

	g, err := grid.Build(10, 10, 3)
	require.NoError(t, err)
	require.Equal(t, 3, g.NumX)
	require.Equal(t, 3, g.NumY)

	f, err := Interpolate(context.Background(), m, g)
	require.NoError(t, err)

	require.Len(t, f.Values, 9)
	assert.Equal(t, 3, f.NumX)
	assert.Equal(t, 3, f.NumY)
	assert.Equal(t, 10.0, f.Width)
	assert.Equal(t, 10.0, f.Height)

	assert.InDelta(t, -40, f.At(0, 0), 1e-9)
	assert.InDelta(t, -60, f.At(2, 0), 1e-9)
	assert.InDelta(t, -80, f.At(0, 2), 1e-9)
}

func TestInterpolate_RowMajorYOuter(t *testing.T) {
	m, err := Fit([]Point{{0, 0}, {20, 0}, {0, 10}, {20, 10}}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	g, err := grid.Build(20, 10, 5)
	require.NoError(t, err)

	f, err := Interpolate(context.Background(), m, g)
	require.NoError(t, err)

	for i := 0; i < g.Len(); i++ {
		x, y := g.At(i)
		assert.InDelta(t, m.Evaluate(x, y), f.Values[i], 1e-12)
	}
	assert.InDelta(t, 2, f.At(g.NumX-1, 0), 1e-9)
	assert.InDelta(t, 3, f.At(0, g.NumY-1), 1e-9)
}

func TestInterpolate_WorkersMatchSequential(t *testing.T) {
	points := []Point{{5, 5}, {300, 40}, {120, 180}, {20, 190}, {260, 150}}
	values := []float64{-35, -70, -55, -82, -61}

	m, err := Fit(points, values)
	require.NoError(t, err)

	g, err := grid.Build(320, 200, 4)
	require.NoError(t, err)

	sequential, err := Interpolate(context.Background(), m, g)
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 1000} {
		parallel, err := Interpolate(context.Background(), m, g, WithWorkers(workers))
		require.NoError(t, err)
		assert.Equal(t, sequential.Values, parallel.Values, "workers=%d", workers)
	}
}

func TestInterpolate_Cancelled(t *testing.T) {
	m, err := Fit([]Point{{0, 0}, {10, 0}}, []float64{1, 2})
	require.NoError(t, err)

	g, err := grid.Build(100, 100, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Interpolate(ctx, m, g)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestField_Sample(t *testing.T) {
	f := &Field{
		NumX: 2, NumY: 2,
		Width: 10, Height: 10,
		Values: []float64{0, 10, 20, 30},
	}

	assert.Equal(t, 0.0, f.Sample(0, 0))
	assert.Equal(t, 10.0, f.Sample(10, 0))
	assert.Equal(t, 30.0, f.Sample(10, 10))
	assert.InDelta(t, 15, f.Sample(5, 5), 1e-12)

	// clamped outside the extent
	assert.Equal(t, 30.0, f.Sample(50, 50))
	assert.Equal(t, 0.0, f.Sample(-1, -1))
}

func TestField_Range(t *testing.T) {
	f := &Field{NumX: 2, NumY: 1, Values: []float64{-90, -20}}
	lo, hi := f.Range()
	assert.Equal(t, -90.0, lo)
	assert.Equal(t, -20.0, hi)
}
