package render

import (
	"image/color"
	"math"
)

// HSV represents a color in HSV color space
type HSV struct {
	H float64 // Hue [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value [0-1]
}

// RGBA converts the color to 8-bit RGB with full opacity.
func (hsv HSV) RGBA() color.RGBA {
	v := clamp01(hsv.V)
	s := clamp01(hsv.S)

	if s <= 0.0 {
		c := uint8(math.Round(v * 255))
		return color.RGBA{R: c, G: c, B: c, A: 0xff}
	}

	h := math.Mod(hsv.H, 360)
	if h < 0 {
		h += 360
	}
	h /= 60
	i := math.Floor(h)
	f := h - i

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return color.RGBA{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
		A: 0xff,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
