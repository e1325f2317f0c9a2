package survey

import "maps"

// Record is a single raw survey row, keyed by column name.
type Record map[string]string

// MeasurementPoint is a survey sample taken at a floor-plan pixel coordinate.
type MeasurementPoint struct {
	X, Y     float64        // Floor-plan pixel coordinates, never negative
	readings map[string]int // Access point ID -> RSSI in dBm
}

// NewMeasurementPoint creates a point owning a copy of readings.
func NewMeasurementPoint(x, y float64, readings map[string]int) MeasurementPoint {
	return MeasurementPoint{X: x, Y: y, readings: maps.Clone(readings)}
}

// Reading returns the signal strength reported by the given access point.
func (p MeasurementPoint) Reading(ap string) (int, bool) {
	v, ok := p.readings[ap]
	return v, ok
}

// Readings returns a copy of all readings taken at the point.
func (p MeasurementPoint) Readings() map[string]int {
	return maps.Clone(p.readings)
}

// Dataset is an ordered collection of measurement points with the derived
// metric for each point. Points[i] corresponds to Metrics[i].
type Dataset struct {
	Points  []MeasurementPoint
	Metrics []float64
}

// Len returns the number of points in the dataset.
func (d *Dataset) Len() int {
	return len(d.Points)
}

// Coordinates returns the point coordinates in dataset order.
func (d *Dataset) Coordinates() (xs, ys []float64) {
	xs = make([]float64, len(d.Points))
	ys = make([]float64, len(d.Points))
	for i, p := range d.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

// MetricRange returns the smallest and largest metric in the dataset.
func (d *Dataset) MetricRange() (lo, hi float64) {
	for i, m := range d.Metrics {
		if i == 0 || m < lo {
			lo = m
		}
		if i == 0 || m > hi {
			hi = m
		}
	}
	return lo, hi
}
