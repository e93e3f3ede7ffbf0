// Package templates loads and classifies UV templates from an asset
// source. The store is built once at startup and is immutable afterward,
// so any number of renders may read it concurrently without locking.
package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/logger"
	"github.com/Faultbox/skinforge/pkg/skin"
	"github.com/Faultbox/skinforge/pkg/uvtpl"
)

// Store errors.
var (
	ErrCanvasMismatch = errors.New("template canvas does not match format")
	ErrUnknownVariant = errors.New("unknown model variant")
)

const templateExt = ".png"

// Store holds a classified, ordered template set. Slices preserve the
// source's listing order; that order is the compositing order.
type Store struct {
	format     skin.Format
	universal  []*uvtpl.Template
	perVariant map[skin.Variant][]*uvtpl.Template
	overlays   map[skin.Variant][]*uvtpl.Template
}

// Load enumerates every template under the source root, decodes and
// classifies it. Any decode failure aborts the whole load: a partial
// template set is never served.
//
// Classification by path shape:
//
//	part.png                    universal, applies to every variant
//	<variant>/part.png          applies to one variant
//	<variant>/overlays/part.png overlay, applied after that variant's base parts
//
// Entries that fit none of these shapes are skipped with a warning.
func Load(ctx context.Context, source assets.Source, format skin.Format) (*Store, error) {
	paths, err := source.List()
	if err != nil {
		return nil, fmt.Errorf("enumerating templates: %w", err)
	}

	var entries []string
	for _, p := range paths {
		if strings.HasSuffix(p, templateExt) {
			entries = append(entries, p)
		}
	}

	decoded, err := decodeAll(ctx, source, format, entries)
	if err != nil {
		return nil, err
	}

	s := &Store{
		format:     format,
		perVariant: make(map[skin.Variant][]*uvtpl.Template),
		overlays:   make(map[skin.Variant][]*uvtpl.Template),
	}

	for i, path := range entries {
		tpl := decoded[i]
		segs := strings.Split(path, "/")
		switch {
		case len(segs) == 1:
			s.universal = append(s.universal, tpl)
		case len(segs) == 2:
			v, err := skin.ParseVariant(segs[0])
			if err != nil {
				logger.Warn("skipping template under unknown directory",
					zap.String("path", path))
				continue
			}
			s.perVariant[v] = append(s.perVariant[v], tpl)
		case len(segs) == 3 && segs[1] == "overlays":
			v, err := skin.ParseVariant(segs[0])
			if err != nil {
				logger.Warn("skipping template under unknown directory",
					zap.String("path", path))
				continue
			}
			s.overlays[v] = append(s.overlays[v], tpl)
		default:
			logger.Warn("skipping template with unrecognized layout",
				zap.String("path", path))
		}
	}

	logger.Info("template store loaded",
		zap.Int("universal", len(s.universal)),
		zap.Int("classic", len(s.perVariant[skin.Classic])),
		zap.Int("slim", len(s.perVariant[skin.Slim])),
		zap.Int("classic_overlays", len(s.overlays[skin.Classic])),
		zap.Int("slim_overlays", len(s.overlays[skin.Slim])))

	return s, nil
}

// decodeAll decodes entries concurrently while keeping results indexed by
// enumeration position, so bucket order never depends on scheduling.
func decodeAll(ctx context.Context, source assets.Source, format skin.Format, entries []string) ([]*uvtpl.Template, error) {
	decoded := make([]*uvtpl.Template, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tpl, err := decodeOne(source, format, path)
			if err != nil {
				return err
			}
			decoded[i] = tpl
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return decoded, nil
}

func decodeOne(source assets.Source, format skin.Format, path string) (*uvtpl.Template, error) {
	data, err := source.Read(path)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}

	name := strings.TrimSuffix(path, templateExt)
	tpl, err := uvtpl.Decode(name, img, format.TextureWidth, format.TextureHeight)
	if err != nil {
		return nil, err
	}

	if tpl.Width != format.CanvasWidth || tpl.Height != format.CanvasHeight {
		return nil, fmt.Errorf("template %s: %dx%d: %w",
			path, tpl.Width, tpl.Height, ErrCanvasMismatch)
	}

	logger.Debug("template decoded",
		zap.String("name", name),
		zap.Int("covered", tpl.Covered()),
		zap.Uint8("max_depth", tpl.MaxDepth))

	return tpl, nil
}

// Format returns the character format the store was loaded against.
func (s *Store) Format() skin.Format {
	return s.format
}

// PartsFor returns the base compositing sequence for a variant: universal
// parts in discovery order, then that variant's parts. Per-variant parts
// are re-checked for the variant's name prefix, so a flattened or mislaid
// directory can never bleed one variant's parts into another.
func (s *Store) PartsFor(v skin.Variant) ([]*uvtpl.Template, error) {
	if !known(v) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, uint8(v))
	}

	parts := make([]*uvtpl.Template, 0, len(s.universal)+len(s.perVariant[v]))
	parts = append(parts, s.universal...)

	prefix := v.String() + "/"
	for _, tpl := range s.perVariant[v] {
		if strings.HasPrefix(tpl.Name, prefix) {
			parts = append(parts, tpl)
		}
	}
	return parts, nil
}

// Overlays returns the overlay sequence for a variant, in discovery order.
// Overlays are applied strictly after the base parts and are never part of
// the PartsFor sequence.
func (s *Store) Overlays(v skin.Variant) ([]*uvtpl.Template, error) {
	if !known(v) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, uint8(v))
	}
	out := make([]*uvtpl.Template, len(s.overlays[v]))
	copy(out, s.overlays[v])
	return out, nil
}

// Universal returns the universal bucket, in discovery order.
func (s *Store) Universal() []*uvtpl.Template {
	out := make([]*uvtpl.Template, len(s.universal))
	copy(out, s.universal)
	return out
}

func known(v skin.Variant) bool {
	for _, k := range skin.Variants() {
		if v == k {
			return true
		}
	}
	return false
}
