// Package assets serves the landing page's static files from a local
// directory or an S3 bucket.
package assets

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ignite/landing-page/internal/pkg/httputil"
	"github.com/ignite/landing-page/internal/pkg/logger"
)

// Renderer rewrites the root document before it is served.
type Renderer interface {
	Render(ctx context.Context, document []byte) ([]byte, error)
}

// Handler maps request paths onto a Source.
type Handler struct {
	source   Source
	index    string
	renderer Renderer
	log      logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithIndex sets the document served for "/" and directory paths.
func WithIndex(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.index = name
		}
	}
}

// WithRenderer composes the root document through r before serving it.
func WithRenderer(r Renderer) Option {
	return func(h *Handler) { h.renderer = r }
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler creates a static file handler over source.
func NewHandler(source Source, opts ...Option) *Handler {
	h := &Handler{
		source: source,
		index:  "index.html",
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if hasTraversal(r.URL.Path) || hasTraversal(r.URL.RawPath) {
		httputil.Text(w, http.StatusForbidden, "access denied")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" || strings.HasSuffix(name, "/") {
		name += h.index
	}

	data, err := h.source.ReadFile(r.Context(), name)
	if errors.Is(err, ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("failed to read asset", "path", name, "error", err)
		httputil.Text(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.renderer != nil && name == h.index {
		composed, err := h.renderer.Render(r.Context(), data)
		if err != nil {
			h.log.Warn("page composition failed, serving raw document", "error", err)
		} else {
			data = composed
		}
	}

	w.Header().Set("Content-Type", ContentType(name))
	httputil.NoCache(w)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := notFoundPage(r.URL.Path).Render(&buf); err != nil {
		h.log.Error("failed to render not found page", "error", err)
		httputil.Text(w, http.StatusNotFound, "not found")
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}

// hasTraversal reports whether p contains a ".." path segment.
func hasTraversal(p string) bool {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
