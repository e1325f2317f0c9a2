// Package floorplan loads floor-plan raster images. The image pixel grid is
// the coordinate system of the survey: one pixel is one coordinate unit.
package floorplan

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("floor plan image has no pixels")

// FloorPlan is a decoded floor-plan image.
type FloorPlan struct {
	Path   string
	Format string
	Image  image.Image
}

// Width returns the image width in pixels.
func (p *FloorPlan) Width() int {
	return p.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (p *FloorPlan) Height() int {
	return p.Image.Bounds().Dy()
}

// Load decodes the image at path. PNG, JPEG, GIF, BMP, TIFF and WebP are
// supported.
func Load(path string) (*FloorPlan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening floor plan: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decoding floor plan '%s': %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	return &FloorPlan{Path: path, Format: format, Image: img}, nil
}

// DecodeConfig reads only the image header and returns its dimensions.
func DecodeConfig(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening floor plan: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding floor plan header '%s': %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
