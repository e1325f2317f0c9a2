package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	tickMarkLength = 0.5  // in line heights
	legendBarWidth = 1.5  // in line heights
	legendGap      = 1.0  // in line heights
	pixelsPerTick  = 3.0  // minimum line heights between tick labels
	axisColorGray  = 0x20 // legend frame and tick marks
)

var axisColor = color.RGBA{R: axisColorGray, G: axisColorGray, B: axisColorGray, A: 0xff}

// annotator draws the title, color legend and caption around the plot.
type annotator struct {
	context  *freetype.Context
	fontFace font.Face
}

func newAnnotator(fontSize float64) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(ReferenceDPI)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    fontSize,
			DPI:     ReferenceDPI,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

// lineHeight returns the font height in pixels.
func (a *annotator) lineHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) textWidth(s string) int {
	return font.MeasureString(a.fontFace, s).Round()
}

// drawText draws s with its top-left corner at pt.
func (a *annotator) drawText(img draw.Image, s string, pt image.Point) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	baseline := pt.Y + a.fontFace.Metrics().Ascent.Round()
	_, err := a.context.DrawString(s, freetype.Pt(pt.X, baseline))
	return err
}

// legendLayout holds the measured legend dimensions.
type legendLayout struct {
	ticks      []float64
	labels     []string
	labelWidth int
	width      int // total width to the right of the plot
}

func (a *annotator) layoutLegend(bounds Bounds, unit string, barHeight int) legendLayout {
	lh := a.lineHeight()

	maxTicks := max(2, int(float64(barHeight)/(pixelsPerTick*float64(lh))))
	ticks := niceTicks(bounds.Min, bounds.Max, maxTicks)

	l := legendLayout{ticks: ticks, labels: make([]string, len(ticks))}
	for i, v := range ticks {
		l.labels[i] = humanize.Ftoa(v)
		l.labelWidth = max(l.labelWidth, a.textWidth(l.labels[i]))
	}
	l.labelWidth = max(l.labelWidth, a.textWidth(unit))

	l.width = scaled(legendGap, lh) + scaled(legendBarWidth, lh) + scaled(tickMarkLength, lh) + lh/2 + l.labelWidth + lh
	return l
}

// drawLegend draws a vertical color bar right of plot with the low end of the
// scale at the bottom, and tick labels next to it.
func (a *annotator) drawLegend(img *image.RGBA, plot image.Rectangle, cm *ColorMapper, unit string, l legendLayout) error {
	lh := a.lineHeight()
	bounds := cm.Bounds()

	bar := image.Rect(
		plot.Max.X+scaled(legendGap, lh),
		plot.Min.Y,
		plot.Max.X+scaled(legendGap, lh)+scaled(legendBarWidth, lh),
		plot.Max.Y,
	)

	span := float64(bar.Dy() - 1)
	for y := bar.Min.Y; y < bar.Max.Y; y++ {
		t := 1.0
		if span > 0 {
			t = 1 - float64(y-bar.Min.Y)/span
		}
		c := cm.Color(bounds.Min + t*(bounds.Max-bounds.Min))
		for x := bar.Min.X; x < bar.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	drawFrame(img, bar, axisColor)

	tickEnd := bar.Max.X + scaled(tickMarkLength, lh)
	for i, v := range l.ticks {
		y := bar.Max.Y - 1 - int(math.Round((v-bounds.Min)/(bounds.Max-bounds.Min)*span))
		for x := bar.Max.X; x < tickEnd; x++ {
			img.SetRGBA(x, y, axisColor)
		}

		pt := image.Pt(tickEnd+lh/4, y-lh/2)
		if err := a.drawText(img, l.labels[i], pt); err != nil {
			return fmt.Errorf("drawing tick label: %w", err)
		}
	}

	if unit != "" {
		pt := image.Pt(bar.Min.X, max(0, bar.Min.Y-lh-lh/4))
		if err := a.drawText(img, unit, pt); err != nil {
			return fmt.Errorf("drawing unit label: %w", err)
		}
	}

	return nil
}

// drawCentered draws s horizontally centered over the span [x0, x1).
func (a *annotator) drawCentered(img *image.RGBA, s string, x0, x1, y int) error {
	x := x0 + (x1-x0-a.textWidth(s))/2
	return a.drawText(img, s, image.Pt(max(0, x), y))
}

func drawFrame(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

func scaled(lines float64, lineHeight int) int {
	return int(math.Round(lines * float64(lineHeight)))
}

// niceTicks returns round tick values within [lo, hi], at most maxTicks of
// them, using steps of 1, 2 or 5 times a power of ten.
func niceTicks(lo, hi float64, maxTicks int) []float64 {
	span := hi - lo
	if span <= 0 || maxTicks < 2 {
		return []float64{lo}
	}

	rough := span / float64(maxTicks-1)
	magnitude := math.Pow(10, math.Floor(math.Log10(rough)))

	step := 10 * magnitude
	for _, m := range []float64{1, 2, 5, 10} {
		if m*magnitude >= rough {
			step = m * magnitude
			break
		}
	}

	var ticks []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		// snap away accumulated floating point error, + 0 turns -0 into 0
		ticks = append(ticks, math.Round(v/step)*step+0)
	}
	if len(ticks) == 0 {
		return []float64{lo, hi}
	}
	return ticks
}
