// Package skin handles character skin textures: decoding, dimension
// validation, legacy-format upgrade and model variant selection.
package skin

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// Skin errors.
var (
	ErrBadDimensions  = errors.New("unexpected skin dimensions")
	ErrUnknownVariant = errors.New("unknown model variant")
)

// Format carries the fixed dimensions of a character format. Dimensions are
// configuration, not compiled-in literals, so alternate formats can be
// served without code changes.
type Format struct {
	TextureWidth  int
	TextureHeight int
	CanvasWidth   int
	CanvasHeight  int
}

// DefaultFormat is the standard 64x64 skin layout with a 512x832 flat
// avatar canvas.
func DefaultFormat() Format {
	return Format{
		TextureWidth:  64,
		TextureHeight: 64,
		CanvasWidth:   512,
		CanvasHeight:  832,
	}
}

// Variant selects one of the two supported character body shapes.
type Variant uint8

const (
	// Classic is the wide-arm body shape.
	Classic Variant = iota
	// Slim is the narrow-arm body shape.
	Slim
)

// Variants lists every supported variant, in a stable order.
func Variants() []Variant {
	return []Variant{Classic, Slim}
}

// String returns the variant identifier used in asset paths and requests.
func (v Variant) String() string {
	switch v {
	case Classic:
		return "classic"
	case Slim:
		return "slim"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// ParseVariant converts an identifier to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "classic":
		return Classic, nil
	case "slim":
		return Slim, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Decode parses a PNG skin and validates its dimensions against f.
// Legacy half-height skins (texture width x half the texture height) are
// upgraded to the full layout; any other size is rejected.
func Decode(data []byte, f Format) (*image.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding skin: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch {
	case w == f.TextureWidth && h == f.TextureHeight:
		return toRGBA(img), nil
	case w == f.TextureWidth && h == f.TextureHeight/2:
		return upgradeLegacy(toRGBA(img), f), nil
	default:
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrBadDimensions, w, h, f.TextureWidth, f.TextureHeight)
	}
}

// Encode serializes a rendered raster as PNG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// DetectVariant guesses the body shape from the texture itself: slim skins
// leave the outer arm column unused, so a transparent texel at (54,20)
// indicates a slim model. Heuristic only; callers that know the variant
// should pass it explicitly.
func DetectVariant(img *image.RGBA) Variant {
	if img.Bounds().Dx() > 54 && img.Bounds().Dy() > 20 {
		if _, _, _, a := img.At(54, 20).RGBA(); a == 0 {
			return Slim
		}
	}
	return Classic
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// legacyRegion describes one mirrored face copy of the legacy upgrade.
type legacyRegion struct {
	srcX, srcY int
	w, h       int
	dstX, dstY int
}

// legacyRegions is the standard mapping that synthesizes the left leg and
// left arm of a half-height skin by mirroring the right-side faces into the
// lower half of the full layout.
var legacyRegions = []legacyRegion{
	{4, 16, 4, 4, 20, 48},   // leg top
	{8, 16, 4, 4, 24, 48},   // leg bottom
	{0, 20, 4, 12, 24, 52},  // leg inside
	{4, 20, 4, 12, 20, 52},  // leg front
	{8, 20, 4, 12, 16, 52},  // leg outside
	{12, 20, 4, 12, 28, 52}, // leg back
	{44, 16, 4, 4, 36, 48},  // arm top
	{48, 16, 4, 4, 40, 48},  // arm bottom
	{40, 20, 4, 12, 40, 52}, // arm inside
	{44, 20, 4, 12, 36, 52}, // arm front
	{48, 20, 4, 12, 32, 52}, // arm outside
	{52, 20, 4, 12, 44, 52}, // arm back
}

// upgradeLegacy expands a half-height skin onto a full-height canvas. The
// top half is copied verbatim; the left limbs are mirrored copies of the
// right ones, per the standard conversion.
func upgradeLegacy(src *image.RGBA, f Format) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, f.TextureWidth, f.TextureHeight))
	draw.Draw(dst, src.Bounds(), src, image.Point{}, draw.Src)

	for _, r := range legacyRegions {
		for y := 0; y < r.h; y++ {
			for x := 0; x < r.w; x++ {
				// Horizontal flip within the face.
				c := src.RGBAAt(r.srcX+r.w-1-x, r.srcY+y)
				dst.SetRGBA(r.dstX+x, r.dstY+y, c)
			}
		}
	}

	return dst
}
