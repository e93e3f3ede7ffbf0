// Package uvtpl decodes UV template images.
//
// A UV template is a precomputed lookup table stored as an RGBA image: for
// every pixel of the output canvas it records which texel of a skin texture
// to sample, or that the pixel is not covered by this template. Compositing
// a set of templates against a skin reproduces a rendered character without
// any 3D math at render time.
//
// Encoding: a template pixel with alpha 0 is uncovered; alpha 255 marks a
// sample, with R = source X, G = source Y and B = the depth at which the
// original geometry produced this pixel. Partial alpha is rejected: it has
// no meaning here, and premultiplied decoding would silently corrupt the
// coordinate channels.
package uvtpl

import (
	"errors"
	"fmt"
	"image"
)

// Template errors.
var (
	ErrSourceOutOfBounds = errors.New("sample source outside texture bounds")
	ErrBadCoverage       = errors.New("coverage marker must be fully opaque or fully transparent")
	ErrEmptyTemplate     = errors.New("template has no pixels")
)

// PixelKind discriminates the two pixel variants.
type PixelKind uint8

const (
	// PixelTransparent marks an output pixel not covered by the template.
	PixelTransparent PixelKind = iota
	// PixelSample marks an output pixel that samples the skin texture.
	PixelSample
)

// Pixel is one entry of a template's per-pixel sampling plan.
// Source and Depth are meaningful only when Kind is PixelSample.
type Pixel struct {
	Kind   PixelKind
	Source image.Point // skin texel to sample
	Depth  uint8
}

// Template is a decoded UV template. Immutable once decoded; safe to share
// across concurrent renders.
type Template struct {
	Name   string
	Width  int
	Height int

	pixels []Pixel // row-major, len == Width*Height

	// MaxDepth is the largest Depth among sample pixels, 0 if the
	// template covers nothing. Diagnostic only; compositing order is
	// decided by the caller, not by depth.
	MaxDepth uint8
}

// At returns the pixel at output position (x, y).
// The caller must keep x and y inside the template's own canvas.
func (t *Template) At(x, y int) Pixel {
	return t.pixels[y*t.Width+x]
}

// Covered reports how many pixels of the template are samples.
func (t *Template) Covered() int {
	n := 0
	for i := range t.pixels {
		if t.pixels[i].Kind == PixelSample {
			n++
		}
	}
	return n
}

// Decode converts a raster into a Template, validating every sample's
// source coordinate against the texture bounds texW x texH. Validation
// happens here, once; render-time sampling relies on it and performs no
// bounds checks of its own.
func Decode(name string, img image.Image, texW, texH int) (*Template, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("template %s: %w", name, ErrEmptyTemplate)
	}

	t := &Template{
		Name:   name,
		Width:  w,
		Height: h,
		pixels: make([]Pixel, w*h),
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a == 0 {
				// Zero value is PixelTransparent.
				continue
			}
			if a != 0xffff {
				return nil, fmt.Errorf("template %s: pixel (%d,%d): alpha %d: %w",
					name, x, y, a>>8, ErrBadCoverage)
			}
			sx, sy := int(r>>8), int(g>>8)
			if sx < 0 || sx >= texW || sy < 0 || sy >= texH {
				return nil, fmt.Errorf("template %s: pixel (%d,%d): source (%d,%d): %w",
					name, x, y, sx, sy, ErrSourceOutOfBounds)
			}
			depth := uint8(bl >> 8)
			t.pixels[y*w+x] = Pixel{
				Kind:   PixelSample,
				Source: image.Pt(sx, sy),
				Depth:  depth,
			}
			if depth > t.MaxDepth {
				t.MaxDepth = depth
			}
		}
	}

	return t, nil
}
