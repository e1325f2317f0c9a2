package render

import (
	"fmt"
	"image/color"
	"math"
)

const DefaultColorMapSize = 256 // Default number of colors in the map

// InvalidValueColor is used for values that are not numbers.
var InvalidValueColor = color.RGBA{A: 0xff}

// ColorMapper maps metric values to colors through a pre-computed lookup
// table. Values outside [Min, Max] saturate at the ends of the scale.
type ColorMapper struct {
	colorMap      []color.RGBA
	colormap      Colormap
	bounds        Bounds
	valuePerIndex float64
}

// NewColorMapper creates a color mapper with DefaultColorMapSize entries.
func NewColorMapper(cm Colormap, bounds Bounds) (*ColorMapper, error) {
	return NewColorMapperWithSize(cm, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a color mapper with the given number of
// pre-computed colors.
func NewColorMapperWithSize(cm Colormap, bounds Bounds, size int) (*ColorMapper, error) {
	fn, ok := colormaps[cm]
	if !ok {
		return nil, fmt.Errorf("unknown colormap '%s'", cm)
	}
	if !(bounds.Min < bounds.Max) {
		return nil, fmt.Errorf("invalid color scale bounds: min %g must be below max %g", bounds.Min, bounds.Max)
	}
	if size < 2 {
		size = DefaultColorMapSize
	}

	m := &ColorMapper{
		colorMap:      make([]color.RGBA, size),
		colormap:      cm,
		bounds:        bounds,
		valuePerIndex: (bounds.Max - bounds.Min) / float64(size-1),
	}
	for i := range m.colorMap {
		m.colorMap[i] = fn(float64(i) / float64(size-1))
	}

	return m, nil
}

// Color returns the color for a metric value.
func (m *ColorMapper) Color(v float64) color.RGBA {
	if math.IsNaN(v) {
		return InvalidValueColor
	}

	v = math.Max(m.bounds.Min, math.Min(v, m.bounds.Max))
	index := int(math.Round((v - m.bounds.Min) / m.valuePerIndex))

	if index < 0 {
		index = 0
	} else if index >= len(m.colorMap) {
		index = len(m.colorMap) - 1
	}
	return m.colorMap[index]
}

// Bounds returns the value range covered by the color scale.
func (m *ColorMapper) Bounds() Bounds {
	return m.bounds
}

// Colormap returns the colormap name.
func (m *ColorMapper) Colormap() Colormap {
	return m.colormap
}

// Size returns the color map size
func (m *ColorMapper) Size() int {
	return len(m.colorMap)
}
