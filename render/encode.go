package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/nfnt/resize"
)

// Format of an encoded image
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// FormatFor guesses the output format from a file name, defaulting to PNG
func FormatFor(fname string) Format {
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".webp":
		return WebP
	default:
		return PNG
	}
}

// Encode writes `img` to `w` in the given format
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case WebP:
		// lossless
		return nativewebp.Encode(w, img, nil)
	}
	return fmt.Errorf("render: unknown format %q", f)
}

// Scale resizes `img` by `factor` keeping hard pixel edges.
// A factor of 1 (or less than or equal to 0) returns `img` as is.
func Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}
	b := img.Bounds()
	w := uint(float64(b.Dx()) * factor)
	if w == 0 {
		w = 1
	}
	return resize.Resize(w, 0, img, resize.NearestNeighbor)
}
