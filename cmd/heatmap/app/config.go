package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/survey-heatmap/internal/render"
	"github.com/roman-kulish/survey-heatmap/internal/survey"
)

const (
	DefaultAggregate = "max"
	DefaultDivisor   = 4 // one grid column per four floor-plan pixels
	DefaultWorkers   = 1
	DefaultTitle     = "survey"
)

// Config represents the heatmap rendering configuration
type Config struct {
	// Survey source, either a CSV table or a stored survey
	Input    string `yaml:"input"`
	DBPath   string `yaml:"db"`
	SurveyID int64  `yaml:"survey"`

	FloorPlan string `yaml:"floorPlan"`
	Width     int    `yaml:"width"`  // Optional, defaults to the floor-plan width
	Height    int    `yaml:"height"` // Optional, defaults to the floor-plan height
	Title     string `yaml:"title"`

	AccessPoints []string `yaml:"accessPoints"` // Empty selects every integer-valued non-coordinate column
	Aggregate    string   `yaml:"aggregate"`
	XField       string   `yaml:"xField"`
	YField       string   `yaml:"yField"`

	Divisor int `yaml:"divisor"`
	Workers int `yaml:"workers"`

	VMin          *float64 `yaml:"vmin"`
	VMax          *float64 `yaml:"vmax"`
	AutoRange     bool     `yaml:"autoRange"`
	Colormap      string   `yaml:"colormap"`
	Alpha         float64  `yaml:"alpha"`
	DPI           float64  `yaml:"dpi"`
	FontSize      float64  `yaml:"fontSize"`
	Unit          string   `yaml:"unit"`
	NoAnnotations bool     `yaml:"noAnnotations"`

	Output string             `yaml:"output"`
	Format render.ImageFormat `yaml:"format"` // Empty derives the format from Output
}

// NewConfig returns a configuration with defaults applied
func NewConfig() *Config {
	return &Config{
		Aggregate: DefaultAggregate,
		XField:    survey.DefaultXField,
		YField:    survey.DefaultYField,
		Divisor:   DefaultDivisor,
		Workers:   DefaultWorkers,
		Colormap:  string(render.DefaultColormap),
		Alpha:     render.DefaultAlpha,
		DPI:       render.DefaultDPI,
		FontSize:  render.DefaultFontSize,
		Unit:      render.DefaultUnit,
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
// Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	c := NewConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return c, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.Input != "" && c.DBPath != "":
		errs = append(errs, errors.New("input file and database are mutually exclusive"))
	case c.Input == "" && c.DBPath == "":
		errs = append(errs, errors.New("either an input file or a database is required"))
	case c.DBPath != "" && c.SurveyID <= 0:
		errs = append(errs, errors.New("survey id is required"))
	}

	if c.FloorPlan == "" {
		errs = append(errs, errors.New("floor plan is required"))
	}
	if c.Width < 0 || c.Height < 0 {
		errs = append(errs, fmt.Errorf("floor plan dimensions must not be negative: %dx%d", c.Width, c.Height))
	}
	if _, err := survey.AggregateFuncByName(c.Aggregate); err != nil {
		errs = append(errs, err)
	}
	if c.XField == "" || c.YField == "" {
		errs = append(errs, errors.New("coordinate field names are required"))
	}
	if c.Divisor <= 0 {
		errs = append(errs, fmt.Errorf("grid divisor must be positive: %d", c.Divisor))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive: %d", c.Workers))
	}

	if c.AutoRange && (c.VMin != nil || c.VMax != nil) {
		errs = append(errs, errors.New("auto range and explicit vmin/vmax are mutually exclusive"))
	}
	if b := c.Bounds(); !(b.Min < b.Max) {
		errs = append(errs, fmt.Errorf("vmin %g must be below vmax %g", b.Min, b.Max))
	}
	if cm, err := render.ParseColormap(c.Colormap); err == nil {
		c.Colormap = string(cm)
	} else {
		errs = append(errs, err)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		errs = append(errs, fmt.Errorf("alpha must be within (0, 1]: %g", c.Alpha))
	}
	if c.DPI <= 0 {
		errs = append(errs, fmt.Errorf("dpi must be positive: %g", c.DPI))
	}
	if c.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("font size must be positive: %g", c.FontSize))
	}
	if c.Format != "" {
		if _, err := render.ParseImageFormat(string(c.Format)); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Bounds returns the configured color scale bounds, unset ends fall back to
// the defaults.
func (c *Config) Bounds() render.Bounds {
	b := render.DefaultBounds()
	if c.VMin != nil {
		b.Min = *c.VMin
	}
	if c.VMax != nil {
		b.Max = *c.VMax
	}
	return b
}

// MetricKey names the rendered metric, e.g. "max_rssi".
func (c *Config) MetricKey() string {
	return strings.ToLower(c.Aggregate) + "_rssi"
}

// OutputPath resolves the output file and its format. Without an explicit
// output the file is named after the metric and the survey title. An output
// without extension gets one matching the format.
func (c *Config) OutputPath(title string) (string, render.ImageFormat, error) {
	format := render.ImagePNG
	if c.Format != "" {
		f, err := render.ParseImageFormat(string(c.Format))
		if err != nil {
			return "", "", err
		}
		format = f
	}

	if c.Output == "" {
		if title == "" {
			title = DefaultTitle
		}
		return fmt.Sprintf("%s_%s.%s", c.MetricKey(), sanitizeFileName(title), format), format, nil
	}

	if f, ok := render.FormatFromPath(c.Output); ok {
		if c.Format == "" {
			return c.Output, f, nil
		}
		return c.Output, format, nil
	}

	return fmt.Sprintf("%s.%s", c.Output, format), format, nil
}

// DefaultTitleFor derives a survey title from an input file name.
func DefaultTitleFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < ' ' {
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}
