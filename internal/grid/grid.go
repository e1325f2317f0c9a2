// Package grid builds the regular evaluation grid the interpolated surface is
// sampled on. The grid spans the floor plan in pixel space and keeps its
// aspect ratio.
package grid

import "fmt"

// DegenerateGridError is returned when the requested grid has fewer than two
// samples along an axis.
type DegenerateGridError struct {
	Width, Height int
	Divisor       int
	NumX, NumY    int
}

func (e *DegenerateGridError) Error() string {
	return fmt.Sprintf("degenerate grid %dx%d for %dx%d px with divisor %d: need at least 2x2",
		e.NumX, e.NumY, e.Width, e.Height, e.Divisor)
}

// Grid is an immutable set of evaluation coordinates. Xs holds the NumX
// column coordinates and Ys the NumY row coordinates; points are enumerated
// row-major with y as the outer axis.
type Grid struct {
	Width, Height float64
	NumX, NumY    int
	Xs, Ys        []float64
}

// Build creates a grid over [0, width] x [0, height] with width/divisor
// columns and as many rows as needed to keep the floor plan aspect ratio.
func Build(width, height, divisor int) (*Grid, error) {
	if width <= 0 || height <= 0 || divisor <= 0 {
		return nil, &DegenerateGridError{Width: width, Height: height, Divisor: divisor}
	}

	numX := width / divisor
	aspect := float64(width) / float64(height)
	numY := int(float64(numX) / aspect)

	if numX < 2 || numY < 2 {
		return nil, &DegenerateGridError{
			Width:   width,
			Height:  height,
			Divisor: divisor,
			NumX:    numX,
			NumY:    numY,
		}
	}

	return &Grid{
		Width:  float64(width),
		Height: float64(height),
		NumX:   numX,
		NumY:   numY,
		Xs:     linspace(0, float64(width), numX),
		Ys:     linspace(0, float64(height), numY),
	}, nil
}

// Len returns the number of grid points.
func (g *Grid) Len() int {
	return g.NumX * g.NumY
}

// At returns the coordinate of the i-th point.
func (g *Grid) At(i int) (x, y float64) {
	return g.Xs[i%g.NumX], g.Ys[i/g.NumX]
}

// Points returns every grid coordinate in evaluation order.
func (g *Grid) Points() [][2]float64 {
	points := make([][2]float64, 0, g.Len())
	for _, y := range g.Ys {
		for _, x := range g.Xs {
			points = append(points, [2]float64{x, y})
		}
	}
	return points
}

// linspace returns n evenly spaced values over [start, stop], both included.
func linspace(start, stop float64, n int) []float64 {
	values := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range values {
		values[i] = start + float64(i)*step
	}
	values[n-1] = stop // avoid accumulated rounding on the last sample
	return values
}
