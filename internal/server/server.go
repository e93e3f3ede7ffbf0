// Package server exposes the renderer over HTTP. The handlers are a thin
// shell: they parse the request, call the render pipeline and encode the
// result. All policy (timeouts, backpressure) lives in the http.Server
// configuration, not in the rendering core.
package server

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/logger"
	"github.com/Faultbox/skinforge/internal/render"
	"github.com/Faultbox/skinforge/pkg/skin"
)

// maxSkinBytes bounds the request body; a 64x64 PNG is a few KB.
const maxSkinBytes = 1 << 20

// Server holds the HTTP handler state.
type Server struct {
	renderer *render.Renderer
	format   skin.Format
	maxScale int
	cache    *renderCache
}

// New returns a Server over the given renderer.
func New(renderer *render.Renderer, format skin.Format, maxScale int) *Server {
	return &Server{
		renderer: renderer,
		format:   format,
		maxScale: maxScale,
		cache:    newRenderCache(),
	}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

// handleRender renders a skin posted as PNG. Query parameters: variant
// (classic, slim, or auto to detect from the texture) and scale (integer
// upscale factor).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSkinBytes))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	scale := 1
	if q := r.URL.Query().Get("scale"); q != "" {
		if _, err := fmt.Sscanf(q, "%d", &scale); err != nil || scale < 1 || scale > s.maxScale {
			http.Error(w, fmt.Sprintf("scale must be 1..%d", s.maxScale), http.StatusBadRequest)
			return
		}
	}

	tex, err := skin.Decode(body, s.format)
	if err != nil {
		if errors.Is(err, skin.ErrBadDimensions) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			http.Error(w, "invalid skin image", http.StatusBadRequest)
		}
		return
	}

	variant := skin.Classic
	switch q := r.URL.Query().Get("variant"); q {
	case "", "auto":
		variant = skin.DetectVariant(tex)
	default:
		variant, err = skin.ParseVariant(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	key := fmt.Sprintf("%x/%s/%d", sha256.Sum256(body), variant, scale)
	if cached, ok := s.cache.Get(key); ok {
		writePNG(w, cached)
		return
	}

	img, err := s.renderer.Render(render.Request{Skin: tex, Variant: variant})
	if err != nil {
		logger.Error("render failed",
			zap.String("variant", variant.String()), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	img, err = render.Upscale(img, scale)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := skin.Encode(img)
	if err != nil {
		logger.Error("encoding render", zap.Error(err))
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}

	s.cache.Set(key, out)
	writePNG(w, out)
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.Write(data)
}

// CacheStats reports render cache hits and misses.
func (s *Server) CacheStats() (hits, misses int) {
	return s.cache.Stats()
}
