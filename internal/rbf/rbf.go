// Package rbf fits a radial basis function interpolant over scattered survey
// points and evaluates it on a regular grid.
//
// The interpolant is global: every evaluated value depends on every sample,
// weighted by the kernel applied to the distance between them. Values are not
// clamped, so the surface may overshoot the sampled range.
package rbf

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kernel is a radial basis function of the distance between two points.
type Kernel func(r float64) float64

// Linear is the phi(r) = r kernel.
func Linear(r float64) float64 {
	return r
}

// Point is a sample coordinate in floor-plan pixel space.
type Point struct {
	X, Y float64
}

// UnderdeterminedFitError is returned when the survey geometry cannot
// determine the interpolant.
type UnderdeterminedFitError struct {
	Points int
	Reason string
}

func (e *UnderdeterminedFitError) Error() string {
	return fmt.Sprintf("cannot fit interpolant over %d point(s): %s", e.Points, e.Reason)
}

// Option configures fitting and evaluation.
type Option func(*options)

// WithKernel replaces the default Linear kernel.
func WithKernel(k Kernel) Option {
	return func(o *options) {
		o.kernel = k
	}
}

// WithLogger sets the logger used while fitting and evaluating.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger.With(slog.String("component", "interpolator"))
	}
}

// WithWorkers evaluates the grid in n disjoint row partitions concurrently.
// The result is identical to sequential evaluation.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

type options struct {
	kernel  Kernel
	workers int
	logger  *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		kernel:  Linear,
		workers: 1,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Model is a fitted interpolant. It is immutable and safe for concurrent use.
type Model struct {
	points  []Point
	weights []float64
	kernel  Kernel
}

// Fit solves for the kernel weights that make the interpolant pass through
// every (point, value) pair.
func Fit(points []Point, values []float64, opts ...Option) (*Model, error) {
	o := newOptions(opts)

	n := len(points)
	if n != len(values) {
		return nil, fmt.Errorf("fitting interpolant: %d points but %d values", n, len(values))
	}
	if n < 2 {
		return nil, &UnderdeterminedFitError{Points: n, Reason: "at least 2 points are required"}
	}

	seen := make(map[Point]int, n)
	for i, p := range points {
		if j, ok := seen[p]; ok {
			return nil, &UnderdeterminedFitError{
				Points: n,
				Reason: fmt.Sprintf("points %d and %d share coordinate (%g, %g)", j, i, p.X, p.Y),
			}
		}
		seen[p] = i
	}

	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := o.kernel(distance(points[i], points[j]))
			a.Set(i, j, v)
			a.Set(j, i, v)
		}
	}

	var lu mat.LU
	lu.Factorize(a)

	var w mat.VecDense
	if err := lu.SolveVecTo(&w, false, mat.NewVecDense(n, append([]float64(nil), values...))); err != nil {
		return nil, &UnderdeterminedFitError{Points: n, Reason: fmt.Sprintf("singular kernel matrix: %s", err)}
	}

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = w.AtVec(i)
		if math.IsNaN(weights[i]) || math.IsInf(weights[i], 0) {
			return nil, &UnderdeterminedFitError{Points: n, Reason: "kernel weights are not finite"}
		}
	}

	o.logger.Debug("fitted interpolant",
		slog.Int("points", n),
		slog.Float64("condition", lu.Cond()))

	return &Model{
		points:  append([]Point(nil), points...),
		weights: weights,
		kernel:  o.kernel,
	}, nil
}

// Len returns the number of samples the model was fitted on.
func (m *Model) Len() int {
	return len(m.points)
}

// Evaluate returns the interpolated value at (x, y).
func (m *Model) Evaluate(x, y float64) float64 {
	p := Point{X: x, Y: y}

	var sum float64
	for i, q := range m.points {
		sum += m.weights[i] * m.kernel(distance(p, q))
	}
	return sum
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
