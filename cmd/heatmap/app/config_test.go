package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/survey-heatmap/internal/render"
)

func validConfig() *Config {
	c := NewConfig()
	c.Input = "office.csv"
	c.FloorPlan = "office.png"
	return c
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "heatmap.yaml", `
input: office.csv
floorPlan: office.png
title: Office
accessPoints: ["2e:20", "f6:70"]
aggregate: mean
vmin: -90
colormap: thermal
alpha: 0.6
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "office.csv", c.Input)
	assert.Equal(t, "Office", c.Title)
	assert.Equal(t, []string{"2e:20", "f6:70"}, c.AccessPoints)
	assert.Equal(t, "mean", c.Aggregate)
	require.NotNil(t, c.VMin)
	assert.Equal(t, -90.0, *c.VMin)
	assert.Nil(t, c.VMax)
	assert.Equal(t, "thermal", c.Colormap)
	assert.Equal(t, 0.6, c.Alpha)

	// untouched keys keep their defaults
	assert.Equal(t, DefaultDivisor, c.Divisor)
	assert.Equal(t, render.DefaultDPI, c.DPI)
	assert.Equal(t, render.Bounds{Min: -90, Max: render.DefaultVMax}, c.Bounds())

	assert.NoError(t, c.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeFile(t, "heatmap.yaml", "colour: red\n"))
	assert.Error(t, err)

	c, err := LoadConfig(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), c)
}

func TestConfig_Validate(t *testing.T) {
	neg := -10.0

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no source", func(c *Config) { c.Input = "" }},
		{"both sources", func(c *Config) { c.DBPath = "survey.db"; c.SurveyID = 1 }},
		{"db without survey", func(c *Config) { c.Input = ""; c.DBPath = "survey.db" }},
		{"no floor plan", func(c *Config) { c.FloorPlan = "" }},
		{"negative width", func(c *Config) { c.Width = -1 }},
		{"unknown aggregate", func(c *Config) { c.Aggregate = "median" }},
		{"zero divisor", func(c *Config) { c.Divisor = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"inverted bounds", func(c *Config) { c.VMin = &neg }},
		{"auto range with bounds", func(c *Config) { c.AutoRange = true; c.VMax = &neg }},
		{"unknown colormap", func(c *Config) { c.Colormap = "jet" }},
		{"zero alpha", func(c *Config) { c.Alpha = 0 }},
		{"alpha above one", func(c *Config) { c.Alpha = 1.1 }},
		{"zero dpi", func(c *Config) { c.DPI = 0 }},
		{"unknown format", func(c *Config) { c.Format = "gif" }},
	}

	require.NoError(t, validConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_ValidateNormalizesColormap(t *testing.T) {
	c := validConfig()
	c.Colormap = "RdYlBu_R "

	require.NoError(t, c.Validate())
	assert.Equal(t, string(render.RdYlBuR), c.Colormap)
}

func TestConfig_OutputPath(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		format     render.ImageFormat
		title      string
		wantPath   string
		wantFormat render.ImageFormat
	}{
		{"derived", "", "", "Office", "max_rssi_Office.png", render.ImagePNG},
		{"derived jpeg", "", "jpg", "Office", "max_rssi_Office.jpeg", render.ImageJPEG},
		{"derived default title", "", "", "", "max_rssi_survey.png", render.ImagePNG},
		{"derived unsafe title", "", "", "1/2 floor", "max_rssi_1_2 floor.png", render.ImagePNG},
		{"extension picks format", "out/heat.jpg", "", "Office", "out/heat.jpg", render.ImageJPEG},
		{"explicit format wins", "out/heat.png", "jpeg", "Office", "out/heat.png", render.ImageJPEG},
		{"extension appended", "out/heat", "", "Office", "out/heat.png", render.ImagePNG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Output = tt.output
			c.Format = tt.format

			path, format, err := c.OutputPath(tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}

func TestDefaultTitleFor(t *testing.T) {
	assert.Equal(t, "office", DefaultTitleFor("surveys/office.csv"))
	assert.Equal(t, "office", DefaultTitleFor("office"))
}
