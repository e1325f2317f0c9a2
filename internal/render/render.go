// Package render turns an interpolated signal field into a raster image: the
// color mapped field is painted under the floor plan and framed with a title,
// a color legend and a caption.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"github.com/roman-kulish/survey-heatmap/internal/rbf"
)

const (
	// ReferenceDPI is the density at which one floor-plan pixel is one dot.
	ReferenceDPI = 300.0

	DefaultAlpha    = 1.0
	DefaultDPI      = ReferenceDPI
	DefaultFontSize = 8.0 // points at ReferenceDPI
	DefaultUnit     = "dBm"
)

// DimensionMismatchError is returned when the field does not cover the floor
// plan exactly.
type DimensionMismatchError struct {
	FieldWidth, FieldHeight float64
	ImageWidth, ImageHeight int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("field extent %gx%g does not match floor plan %dx%d px",
		e.FieldWidth, e.FieldHeight, e.ImageWidth, e.ImageHeight)
}

// Config holds the rendering parameters. Zero values select defaults.
type Config struct {
	VMin, VMax float64  // Color scale bounds, both zero selects DefaultBounds
	Colormap   Colormap // Color mapping function
	Alpha      float64  // Opacity of the floor plan drawn over the field (0, 1]
	DPI        float64  // Output raster density, dots per inch

	Title         string  // Drawn above the plot
	Caption       string  // Drawn below the plot
	Unit          string  // Legend unit label
	FontSize      float64 // Font size in points
	NoAnnotations bool    // Render only the plot area, no title, legend or caption
}

// WithLogger sets the logger for the renderer
func WithLogger(logger *slog.Logger) func(*SurfaceRenderer) {
	return func(r *SurfaceRenderer) {
		r.logger = logger.With(slog.String("component", "renderer"))
	}
}

// SurfaceRenderer composites interpolated fields with floor-plan images.
type SurfaceRenderer struct {
	config   Config
	colorMap *ColorMapper
	logger   *slog.Logger
}

// NewSurfaceRenderer creates a new renderer with the given configuration
func NewSurfaceRenderer(config Config, options ...func(*SurfaceRenderer)) (*SurfaceRenderer, error) {
	if config.VMin == 0 && config.VMax == 0 {
		config.VMin, config.VMax = DefaultVMin, DefaultVMax
	}
	if config.Colormap == "" {
		config.Colormap = DefaultColormap
	}
	if config.Alpha == 0 {
		config.Alpha = DefaultAlpha
	}
	if config.DPI == 0 {
		config.DPI = DefaultDPI
	}
	if config.FontSize == 0 {
		config.FontSize = DefaultFontSize
	}
	if config.Unit == "" {
		config.Unit = DefaultUnit
	}

	if config.Alpha < 0 || config.Alpha > 1 {
		return nil, fmt.Errorf("alpha must be within (0, 1]: %g", config.Alpha)
	}
	if config.DPI < 0 {
		return nil, fmt.Errorf("dpi must be positive: %g", config.DPI)
	}

	cm, err := NewColorMapper(config.Colormap, Bounds{Min: config.VMin, Max: config.VMax})
	if err != nil {
		return nil, fmt.Errorf("creating color mapper: %w", err)
	}

	r := &SurfaceRenderer{
		config:   config,
		colorMap: cm,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(r)
	}

	return r, nil
}

// Config returns the effective configuration, defaults applied.
func (r *SurfaceRenderer) Config() Config {
	return r.config
}

// Render paints the field under the floor plan, adds annotations and scales
// the result to the configured density.
func (r *SurfaceRenderer) Render(field *rbf.Field, floorPlan image.Image) (*image.RGBA, error) {
	size := floorPlan.Bounds().Size()
	if field.Width != float64(size.X) || field.Height != float64(size.Y) {
		return nil, &DimensionMismatchError{
			FieldWidth:  field.Width,
			FieldHeight: field.Height,
			ImageWidth:  size.X,
			ImageHeight: size.Y,
		}
	}

	var img *image.RGBA
	var err error
	if r.config.NoAnnotations {
		img = image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
		r.composite(img, img.Bounds(), field, floorPlan)
	} else if img, err = r.renderAnnotated(field, floorPlan); err != nil {
		return nil, err
	}

	scale := r.config.DPI / ReferenceDPI
	if scale != 1 {
		img = rescale(img, scale)
	}

	r.logger.Debug("rendered surface",
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()),
		slog.String("colormap", string(r.config.Colormap)),
		slog.Float64("vmin", r.config.VMin),
		slog.Float64("vmax", r.config.VMax))

	return img, nil
}

func (r *SurfaceRenderer) renderAnnotated(field *rbf.Field, floorPlan image.Image) (*image.RGBA, error) {
	ann, err := newAnnotator(r.config.FontSize)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	size := floorPlan.Bounds().Size()
	lh := ann.lineHeight()
	legend := ann.layoutLegend(r.colorMap.Bounds(), r.config.Unit, size.Y)

	// the unit label sits above the bar, so there is always a top border
	top := 2 * lh
	if r.config.Title != "" {
		top = 3 * lh
	}
	bottom := lh
	if r.config.Caption != "" {
		bottom = 3 * lh
	}
	left := lh

	img := image.NewRGBA(image.Rect(0, 0, left+size.X+legend.width, top+size.Y+bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	plot := image.Rect(left, top, left+size.X, top+size.Y)
	r.composite(img, plot, field, floorPlan)

	if r.config.Title != "" {
		if err = ann.drawCentered(img, r.config.Title, plot.Min.X, plot.Max.X, lh/2); err != nil {
			return nil, fmt.Errorf("drawing title: %w", err)
		}
	}
	if err = ann.drawLegend(img, plot, r.colorMap, r.config.Unit, legend); err != nil {
		return nil, fmt.Errorf("drawing legend: %w", err)
	}
	if r.config.Caption != "" {
		if err = ann.drawText(img, r.config.Caption, image.Pt(plot.Min.X, plot.Max.Y+lh)); err != nil {
			return nil, fmt.Errorf("drawing caption: %w", err)
		}
	}

	return img, nil
}

// composite paints the color mapped field into area, then draws the floor
// plan over it with the configured opacity. area has the floor-plan size.
func (r *SurfaceRenderer) composite(img *image.RGBA, area image.Rectangle, field *rbf.Field, floorPlan image.Image) {
	for py := 0; py < area.Dy(); py++ {
		y := float64(py) + 0.5
		for px := 0; px < area.Dx(); px++ {
			v := field.Sample(float64(px)+0.5, y)
			img.SetRGBA(area.Min.X+px, area.Min.Y+py, r.colorMap.Color(v))
		}
	}

	opacity := uint8(math.Round(r.config.Alpha * 0xff))
	mask := image.NewUniform(color.Alpha{A: opacity})
	draw.DrawMask(img, area, floorPlan, floorPlan.Bounds().Min, mask, image.Point{}, draw.Over)
}

// ColorOf returns the color a metric value is painted with.
func (r *SurfaceRenderer) ColorOf(v float64) color.RGBA {
	return r.colorMap.Color(v)
}

func rescale(src *image.RGBA, scale float64) *image.RGBA {
	b := src.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
