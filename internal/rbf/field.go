package rbf

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roman-kulish/survey-heatmap/internal/grid"
)

// Field is the dense result of evaluating a model over a grid. Values are
// stored row-major with y as the outer axis, NumY rows of NumX values.
type Field struct {
	NumX, NumY    int
	Width, Height float64 // extent covered by the grid, in floor-plan pixels
	Values        []float64
}

// At returns the value at column i, row j.
func (f *Field) At(i, j int) float64 {
	return f.Values[j*f.NumX+i]
}

// Range returns the smallest and largest values in the field.
func (f *Field) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range f.Values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// Sample returns the field value at floor-plan coordinate (x, y) by bilinear
// interpolation between the surrounding grid samples. Coordinates outside the
// extent are clamped to the border.
func (f *Field) Sample(x, y float64) float64 {
	fx := clamp(x/f.Width, 0, 1) * float64(f.NumX-1)
	fy := clamp(y/f.Height, 0, 1) * float64(f.NumY-1)

	i0, j0 := int(fx), int(fy)
	i1, j1 := min(i0+1, f.NumX-1), min(j0+1, f.NumY-1)
	tx, ty := fx-float64(i0), fy-float64(j0)

	top := f.At(i0, j0)*(1-tx) + f.At(i1, j0)*tx
	bottom := f.At(i0, j1)*(1-tx) + f.At(i1, j1)*tx
	return top*(1-ty) + bottom*ty
}

// Interpolate evaluates the model at every grid point.
func Interpolate(ctx context.Context, m *Model, g *grid.Grid, opts ...Option) (*Field, error) {
	o := newOptions(opts)

	f := Field{
		NumX:   g.NumX,
		NumY:   g.NumY,
		Width:  g.Width,
		Height: g.Height,
		Values: make([]float64, g.Len()),
	}

	start := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers)

	rowsPerWorker := (g.NumY + o.workers - 1) / o.workers
	for first := 0; first < g.NumY; first += rowsPerWorker {
		first := first
		last := min(first+rowsPerWorker, g.NumY)
		eg.Go(func() error {
			for j := first; j < last; j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				row := f.Values[j*g.NumX : (j+1)*g.NumX]
				for i, x := range g.Xs {
					row[i] = m.Evaluate(x, g.Ys[j])
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("evaluating grid: %w", err)
	}

	lo, hi := f.Range()
	o.logger.Debug("evaluated grid",
		slog.Int("numX", f.NumX),
		slog.Int("numY", f.NumY),
		slog.Int("workers", o.workers),
		slog.Float64("min", lo),
		slog.Float64("max", hi),
		slog.Duration("took", time.Since(start)))

	return &f, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
