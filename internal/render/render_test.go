package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/survey-heatmap/internal/rbf"
)

func constantField(w, h int, v float64) *rbf.Field {
	values := make([]float64, 4)
	for i := range values {
		values[i] = v
	}
	return &rbf.Field{NumX: 2, NumY: 2, Width: float64(w), Height: float64(h), Values: values}
}

func uniformPlan(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNewSurfaceRenderer_Defaults(t *testing.T) {
	r, err := NewSurfaceRenderer(Config{})
	require.NoError(t, err)

	c := r.Config()
	assert.Equal(t, DefaultVMin, c.VMin)
	assert.Equal(t, DefaultVMax, c.VMax)
	assert.Equal(t, DefaultColormap, c.Colormap)
	assert.Equal(t, DefaultAlpha, c.Alpha)
	assert.Equal(t, DefaultDPI, c.DPI)
	assert.Equal(t, DefaultFontSize, c.FontSize)
	assert.Equal(t, DefaultUnit, c.Unit)
}

func TestNewSurfaceRenderer_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"alpha above one", Config{Alpha: 1.5}},
		{"negative alpha", Config{Alpha: -0.1}},
		{"negative dpi", Config{DPI: -1}},
		{"inverted bounds", Config{VMin: -20, VMax: -90}},
		{"unknown colormap", Config{Colormap: "jet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSurfaceRenderer(tt.config)
			assert.Error(t, err)
		})
	}
}

func TestRender_DimensionMismatch(t *testing.T) {
	r, err := NewSurfaceRenderer(Config{NoAnnotations: true})
	require.NoError(t, err)

	_, err = r.Render(constantField(4, 4, -50), uniformPlan(5, 4, color.Transparent))

	var mismatch *DimensionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 5, mismatch.ImageWidth)
	assert.Equal(t, 4.0, mismatch.FieldWidth)
}

func TestRender_TransparentPlanShowsField(t *testing.T) {
	r, err := NewSurfaceRenderer(Config{NoAnnotations: true})
	require.NoError(t, err)

	img, err := r.Render(constantField(4, 3, -55), uniformPlan(4, 3, color.Transparent))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	want := r.ColorOf(-55)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, want, img.RGBAAt(x, y))
		}
	}
}

func TestRender_SaturatedField(t *testing.T) {
	r, err := NewSurfaceRenderer(Config{NoAnnotations: true})
	require.NoError(t, err)

	weak, err := r.Render(constantField(2, 2, -120), uniformPlan(2, 2, color.Transparent))
	require.NoError(t, err)
	strong, err := r.Render(constantField(2, 2, -5), uniformPlan(2, 2, color.Transparent))
	require.NoError(t, err)

	assert.Equal(t, r.ColorOf(DefaultVMin), weak.RGBAAt(0, 0))
	assert.Equal(t, r.ColorOf(DefaultVMax), strong.RGBAAt(1, 1))
}

func TestRender_PlanOpacity(t *testing.T) {
	opaque, err := NewSurfaceRenderer(Config{NoAnnotations: true, Alpha: 1})
	require.NoError(t, err)

	img, err := opaque.Render(constantField(2, 2, -55), uniformPlan(2, 2, color.White))
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, img.RGBAAt(0, 0))

	half, err := NewSurfaceRenderer(Config{NoAnnotations: true, Alpha: 0.5})
	require.NoError(t, err)

	img, err = half.Render(constantField(2, 2, -55), uniformPlan(2, 2, color.White))
	require.NoError(t, err)

	under := half.ColorOf(-55)
	got := img.RGBAAt(1, 1)
	assert.InDelta(t, 0.5*float64(under.R)+127.5, float64(got.R), 2)
	assert.InDelta(t, 0.5*float64(under.G)+127.5, float64(got.G), 2)
	assert.InDelta(t, 0.5*float64(under.B)+127.5, float64(got.B), 2)
	assert.Equal(t, uint8(0xff), got.A)
}

func TestRender_DPIScaling(t *testing.T) {
	tests := []struct {
		dpi  float64
		want image.Rectangle
	}{
		{ReferenceDPI, image.Rect(0, 0, 4, 4)},
		{2 * ReferenceDPI, image.Rect(0, 0, 8, 8)},
		{ReferenceDPI / 2, image.Rect(0, 0, 2, 2)},
	}

	for _, tt := range tests {
		r, err := NewSurfaceRenderer(Config{NoAnnotations: true, DPI: tt.dpi})
		require.NoError(t, err)

		img, err := r.Render(constantField(4, 4, -60), uniformPlan(4, 4, color.Transparent))
		require.NoError(t, err)
		assert.Equal(t, tt.want, img.Bounds(), "dpi %v", tt.dpi)
	}
}

func TestRender_Annotated(t *testing.T) {
	r, err := NewSurfaceRenderer(Config{Title: "Office", Caption: "Max RSSI"})
	require.NoError(t, err)

	img, err := r.Render(constantField(40, 30, -60), uniformPlan(40, 30, color.Transparent))
	require.NoError(t, err)

	// title and caption above and below, legend to the right
	assert.Greater(t, img.Bounds().Dx(), 40)
	assert.Greater(t, img.Bounds().Dy(), 30)

	bare, err := NewSurfaceRenderer(Config{})
	require.NoError(t, err)

	plain, err := bare.Render(constantField(40, 30, -60), uniformPlan(40, 30, color.Transparent))
	require.NoError(t, err)
	assert.Less(t, plain.Bounds().Dy(), img.Bounds().Dy())
}
