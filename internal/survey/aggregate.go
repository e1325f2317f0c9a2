package survey

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultXField = "x"
	DefaultYField = "y"
)

var errNegativeCoordinate = errors.New("coordinate must not be negative")

// AggregateFunc reduces the readings of the configured access points at one
// point into a single metric. It is never called with an empty slice.
type AggregateFunc func(values []int) float64

// Max models the best signal available at a point.
func Max(values []int) float64 {
	return float64(slices.Max(values))
}

// Min models the weakest configured access point.
func Min(values []int) float64 {
	return float64(slices.Min(values))
}

// Mean averages the readings in dBm.
func Mean(values []int) float64 {
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

var aggregateFuncs = map[string]AggregateFunc{
	"max":  Max,
	"min":  Min,
	"mean": Mean,
}

// AggregateFuncByName returns a built-in aggregation by its name.
func AggregateFuncByName(name string) (AggregateFunc, error) {
	fn, ok := aggregateFuncs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown aggregate function: %s", name)
	}
	return fn, nil
}

// WithAggregateFunc replaces the default Max aggregation.
func WithAggregateFunc(fn AggregateFunc) func(*Aggregator) {
	return func(a *Aggregator) {
		a.aggregate = fn
	}
}

// WithCoordinateFields sets the column names holding drawing coordinates.
func WithCoordinateFields(x, y string) func(*Aggregator) {
	return func(a *Aggregator) {
		a.xField = x
		a.yField = y
	}
}

// WithLogger sets the logger for the aggregator
func WithLogger(logger *slog.Logger) func(*Aggregator) {
	return func(a *Aggregator) {
		a.logger = logger.With(slog.String("component", "aggregator"))
	}
}

// Aggregator turns raw survey records into a Dataset.
type Aggregator struct {
	accessPoints []string
	aggregate    AggregateFunc
	xField       string
	yField       string
	logger       *slog.Logger
}

// NewAggregator creates an aggregator deriving the metric from the given
// access points.
func NewAggregator(accessPoints []string, options ...func(*Aggregator)) *Aggregator {
	a := Aggregator{
		accessPoints: slices.Clone(accessPoints),
		aggregate:    Max,
		xField:       DefaultXField,
		yField:       DefaultYField,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&a)
	}

	return &a
}

// AccessPoints returns the configured access point IDs.
func (a *Aggregator) AccessPoints() []string {
	return slices.Clone(a.accessPoints)
}

// Aggregate parses records in order and derives the per-point metric.
// It stops at the first invalid record.
func (a *Aggregator) Aggregate(records []Record) (*Dataset, error) {
	ds := Dataset{
		Points:  make([]MeasurementPoint, 0, len(records)),
		Metrics: make([]float64, 0, len(records)),
	}

	values := make([]int, 0, len(a.accessPoints))
	for row, rec := range records {
		point, err := a.parsePoint(row, rec)
		if err != nil {
			return nil, err
		}

		values = values[:0]
		for _, ap := range a.accessPoints {
			v, ok := point.Reading(ap)
			if !ok {
				return nil, &MissingFieldError{Row: row, Field: ap}
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			return nil, &EmptyReadingsError{Row: row}
		}

		ds.Points = append(ds.Points, point)
		ds.Metrics = append(ds.Metrics, a.aggregate(values))
	}

	a.logger.Debug("aggregated survey records",
		slog.Int("points", ds.Len()),
		slog.Any("accessPoints", a.accessPoints))

	return &ds, nil
}

func (a *Aggregator) parsePoint(row int, rec Record) (MeasurementPoint, error) {
	x, err := a.parseCoordinate(row, rec, a.xField)
	if err != nil {
		return MeasurementPoint{}, err
	}
	y, err := a.parseCoordinate(row, rec, a.yField)
	if err != nil {
		return MeasurementPoint{}, err
	}

	readings := make(map[string]int, len(rec))
	for field, raw := range rec {
		if field == a.xField || field == a.yField {
			continue
		}

		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue // blank cells count as missing readings
		}

		v, err := strconv.Atoi(raw)
		if err != nil {
			if slices.Contains(a.accessPoints, field) {
				return MeasurementPoint{}, &InvalidValueError{Row: row, Field: field, Value: raw, Err: err}
			}
			a.logger.Debug("skipping non-numeric column", slog.Int("row", row), slog.String("field", field))
			continue
		}
		readings[field] = v
	}

	return MeasurementPoint{X: x, Y: y, readings: readings}, nil
}

func (a *Aggregator) parseCoordinate(row int, rec Record, field string) (float64, error) {
	raw, ok := rec[field]
	if raw = strings.TrimSpace(raw); !ok || raw == "" {
		return 0, &MissingFieldError{Row: row, Field: field}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &InvalidValueError{Row: row, Field: field, Value: raw, Err: err}
	}
	if v < 0 {
		return 0, &InvalidValueError{Row: row, Field: field, Value: raw, Err: errNegativeCoordinate}
	}
	return v, nil
}

// AccessPointFields returns every integer-valued column name found in records
// except the coordinate fields, sorted. A column holding any non-blank value
// that is not an integer, such as an SSID, is left out. It is used when no
// access points are configured.
func AccessPointFields(records []Record, xField, yField string) []string {
	numeric := make(map[string]bool)
	for _, rec := range records {
		for field, raw := range rec {
			if field == xField || field == yField {
				continue
			}
			if _, ok := numeric[field]; !ok {
				numeric[field] = true
			}

			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if _, err := strconv.Atoi(raw); err != nil {
				numeric[field] = false
			}
		}
	}

	fields := make([]string, 0, len(numeric))
	for field, ok := range numeric {
		if ok {
			fields = append(fields, field)
		}
	}
	slices.Sort(fields)
	return fields
}
