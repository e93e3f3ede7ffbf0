// Package render composites UV templates against a skin texture into a
// flat avatar image.
package render

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/Faultbox/skinforge/internal/templates"
	"github.com/Faultbox/skinforge/pkg/skin"
	"github.com/Faultbox/skinforge/pkg/uvtpl"
)

// Request is one render call: an input skin and the body shape to render.
// It never outlives the call and never mutates the store.
type Request struct {
	Skin    *image.RGBA
	Variant skin.Variant
}

// Renderer drives sequential template compositing against a loaded store.
// Renderers are stateless between calls; one Renderer serves any number of
// concurrent renders.
type Renderer struct {
	store *templates.Store
}

// New returns a Renderer over the given store.
func New(store *templates.Store) *Renderer {
	return &Renderer{store: store}
}

// Render produces the flat avatar for a request. Base parts are applied in
// discovery order, overlays strictly after; each later template's opaque
// writes replace earlier ones at contested pixels (painter's algorithm).
// The result is all-or-nothing: on error no partial canvas is returned.
func (r *Renderer) Render(req Request) (*image.RGBA, error) {
	parts, err := r.store.PartsFor(req.Variant)
	if err != nil {
		return nil, err
	}
	overlays, err := r.store.Overlays(req.Variant)
	if err != nil {
		return nil, err
	}

	f := r.store.Format()
	canvas := image.NewRGBA(image.Rect(0, 0, f.CanvasWidth, f.CanvasHeight))

	for _, tpl := range parts {
		Apply(canvas, req.Skin, tpl)
	}
	for _, tpl := range overlays {
		Apply(canvas, req.Skin, tpl)
	}

	return canvas, nil
}

// Apply composites one template: transparent template pixels leave the
// canvas untouched, sample pixels copy the referenced skin texel over
// whatever the canvas held. Source coordinates were bounds-checked at load
// time, so the inner loop does no validation.
func Apply(dst, src *image.RGBA, tpl *uvtpl.Template) {
	for y := 0; y < tpl.Height; y++ {
		for x := 0; x < tpl.Width; x++ {
			px := tpl.At(x, y)
			if px.Kind != uvtpl.PixelSample {
				continue
			}
			so := src.PixOffset(px.Source.X, px.Source.Y)
			do := dst.PixOffset(x, y)
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
}

// Upscale returns img scaled up by an integer factor with nearest-neighbour
// sampling, keeping pixel-art edges hard. Factor 1 returns img unchanged.
func Upscale(img *image.RGBA, factor int) (*image.RGBA, error) {
	if factor < 1 {
		return nil, fmt.Errorf("invalid scale factor %d", factor)
	}
	if factor == 1 {
		return img, nil
	}

	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out, nil
}
