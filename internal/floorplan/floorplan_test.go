package floorplan

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeImage(t *testing.T, name string, encode func(*os.File, image.Image) error) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 12, 7))
	img.Set(3, 4, color.Black)

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestLoad_PNG(t *testing.T) {
	path := writeImage(t, "plan.png", func(f *os.File, img image.Image) error { return png.Encode(f, img) })

	plan, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "png", plan.Format)
	assert.Equal(t, 12, plan.Width())
	assert.Equal(t, 7, plan.Height())

	w, h, err := DecodeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12, w)
	assert.Equal(t, 7, h)
}

func TestLoad_BMP(t *testing.T) {
	path := writeImage(t, "plan.bmp", func(f *os.File, img image.Image) error { return bmp.Encode(f, img) })

	plan, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bmp", plan.Format)
	assert.Equal(t, image.Rect(0, 0, 12, 7), plan.Image.Bounds())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(t.TempDir(), "plan.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))

	_, err = Load(garbage)
	assert.ErrorIs(t, err, image.ErrFormat)
}
