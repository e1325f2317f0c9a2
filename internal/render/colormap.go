package render

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Colormap names a mapping from a normalized value in [0, 1] to a color.
// 0 is the low end of the color scale, 1 the high end.
type Colormap string

const (
	RdYlBuR   Colormap = "rdylbu_r"  // Blue to yellow to red, weak signal is blue
	RdYlBu    Colormap = "rdylbu"    // Red to yellow to blue
	Classic   Colormap = "classic"   // Blue to red hue sweep
	Grayscale Colormap = "grayscale" // Black to white transition
	Jungle    Colormap = "jungle"    // Dark green to yellow transition
	Thermal   Colormap = "thermal"   // Black to red to yellow to white
	Marine    Colormap = "marine"    // Deep blue to cyan to white
	Enhanced  Colormap = "enhanced"  // Black to blue to cyan to yellow to red

	DefaultColormap = RdYlBuR
)

// ColorBrewer RdYlBu, 11 classes, red end first.
var rdylbuStops = []string{
	"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee090", "#ffffbf",
	"#e0f3f8", "#abd9e9", "#74add1", "#4575b4", "#313695",
}

var colormaps = map[Colormap]func(float64) color.RGBA{
	RdYlBuR:   gradient(reversed(rdylbuStops)),
	RdYlBu:    gradient(rdylbuStops),
	Classic:   classic,
	Grayscale: grayscale,
	Jungle:    jungle,
	Thermal:   thermal,
	Marine:    marine,
	Enhanced:  enhanced,
}

// Colormaps returns the names of all known colormaps, sorted.
func Colormaps() []string {
	names := make([]string, 0, len(colormaps))
	for name := range colormaps {
		names = append(names, string(name))
	}
	slices.Sort(names)
	return names
}

// ParseColormap validates a colormap name.
func ParseColormap(name string) (Colormap, error) {
	cm := Colormap(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := colormaps[cm]; !ok {
		return "", fmt.Errorf("unknown colormap '%s', expected one of: %s", name, strings.Join(Colormaps(), ", "))
	}
	return cm, nil
}

// gradient interpolates linearly in RGB between evenly spaced stops.
func gradient(hexStops []string) func(float64) color.RGBA {
	stops := make([]colorful.Color, len(hexStops))
	for i, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("invalid colormap stop %q: %v", h, err))
		}
		stops[i] = c
	}

	segments := float64(len(stops) - 1)
	return func(t float64) color.RGBA {
		pos := clamp01(t) * segments
		i := min(int(pos), len(stops)-2)
		c := stops[i].BlendRgb(stops[i+1], pos-float64(i)).Clamped()

		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
}

func reversed(s []string) []string {
	r := slices.Clone(s)
	slices.Reverse(r)
	return r
}

func classic(t float64) color.RGBA {
	return HSV{
		H: 240 - (t * 240),
		S: 0.9 + (t * 0.1),
		V: math.Pow(t, 0.7),
	}.RGBA()
}

func grayscale(t float64) color.RGBA {
	v := uint8(math.Round(math.Pow(t, 0.7) * 255))
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

func jungle(t float64) color.RGBA {
	return HSV{
		H: 120 - (t * 60),
		S: 1.0,
		V: 0.3 + (math.Pow(t, 0.6) * 0.7),
	}.RGBA()
}

func thermal(t float64) color.RGBA {
	switch {
	case t < 1.0/3:
		return color.RGBA{R: uint8(math.Round(t * 3 * 255)), A: 0xff}
	case t < 2.0/3:
		return color.RGBA{R: 255, G: uint8(math.Round((t - 1.0/3) * 3 * 255)), A: 0xff}
	default:
		return color.RGBA{R: 255, G: 255, B: uint8(math.Round(clamp01((t-2.0/3)*3) * 255)), A: 0xff}
	}
}

func marine(t float64) color.RGBA {
	return HSV{
		H: 240 - (t * 60),
		S: 1.0 - (t * 0.8),
		V: 0.3 + (math.Pow(t, 0.6) * 0.7),
	}.RGBA()
}

// enhanced stretches the low end of the scale for better separation of weak
// signals.
func enhanced(t float64) color.RGBA {
	boosted := math.Pow(t, 0.7)

	switch {
	case t < 0.25:
		return HSV{H: 240, S: 1.0, V: boosted * 4}.RGBA()
	case t < 0.5:
		return HSV{H: 240 - ((t - 0.25) * 240), S: 1.0, V: boosted * 1.5}.RGBA()
	case t < 0.75:
		p := (t - 0.5) * 4
		return HSV{H: 180 - (p * 120), S: 1.0, V: math.Min(1.0, boosted*1.5)}.RGBA()
	default:
		p := (t - 0.75) * 4
		return HSV{H: 60 - (p * 60), S: 1.0, V: 1.0}.RGBA()
	}
}
