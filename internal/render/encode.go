package render

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"

	JPEGQuality = 98

	inchesPerMeter = 39.3701
	pngHeaderSize  = 8 + 25 // signature plus the IHDR chunk
)

type ImageFormat string

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// ParseImageFormat parses an output format name, "jpg" is accepted for JPEG.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return ImagePNG, nil
	case "jpeg", "jpg":
		return ImageJPEG, nil
	default:
		return "", fmt.Errorf("unsupported image format '%s'", s)
	}
}

// FormatFromPath derives the image format from a file extension.
func FormatFromPath(path string) (ImageFormat, bool) {
	f, err := ParseImageFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	return f, err == nil
}

// Encode writes img to w in the given format. PNG output records dpi in a
// pHYs chunk so viewers and printers reproduce the physical size.
func Encode(w io.Writer, img image.Image, format ImageFormat, dpi float64) error {
	switch format {
	case ImagePNG:
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}
		data, err := withPhysicalDimensions(buf.Bytes(), dpi)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	case ImageJPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return fmt.Errorf("encoding jpeg: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported image format '%s'", format)
	}
}

// WriteFile encodes img into path. The image is written to a temporary file
// in the same directory first, so a failed run never leaves a partial file.
// It returns the number of bytes written.
func WriteFile(path string, img image.Image, format ImageFormat, dpi float64) (n int, err error) {
	var buf bytes.Buffer
	if err = Encode(&buf, img, format, dpi); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("setting file mode: %w", err)
	}
	if n, err = tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("writing image: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing image: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("moving image into place: %w", err)
	}

	return n, nil
}

// withPhysicalDimensions inserts a pHYs chunk right after IHDR.
func withPhysicalDimensions(data []byte, dpi float64) ([]byte, error) {
	if dpi <= 0 {
		return data, nil
	}
	if len(data) < pngHeaderSize || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return nil, errors.New("malformed png stream")
	}

	ppm := uint32(math.Round(dpi * inchesPerMeter))

	chunk := make([]byte, 0, 21)
	chunk = binary.BigEndian.AppendUint32(chunk, 9)
	chunk = append(chunk, "pHYs"...)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = append(chunk, 1) // unit is the meter
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:pngHeaderSize]...)
	out = append(out, chunk...)
	out = append(out, data[pngHeaderSize:]...)
	return out, nil
}
