package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"choromap/internal/config"
	"choromap/internal/datamap"
	"choromap/internal/geom"
	xlog "choromap/internal/log"
	"choromap/internal/projection"
	"choromap/internal/render"
)

// RenderRequest is the body of POST /v1/render. Topology names one of the
// configured topologies; when empty the scope name is tried, then the
// default topology.
type RenderRequest struct {
	Topology  string                  `json:"topology,omitempty"`
	Options   config.Options          `json:"options"`
	Data      map[string]any          `json:"data,omitempty"`
	Reset     bool                    `json:"reset,omitempty"`
	Bubbles   any                     `json:"bubbles,omitempty"`
	Arcs      any                     `json:"arcs,omitempty"`
	Labels    *config.LabelsConfig    `json:"labels,omitempty"`
	Legend    *config.LegendConfig    `json:"legend,omitempty"`
	Graticule *config.GraticuleConfig `json:"graticule,omitempty"`
	Animate   bool                    `json:"animate,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

var contentTypes = map[string]string{
	"svg":  "image/svg+xml",
	"png":  "image/png",
	"html": "text/html; charset=utf-8",
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Detail: detail})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, datamap.ErrUnknownScope), errors.Is(err, ErrUnknownTopology):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, datamap.ErrBubblesNotArray),
		errors.Is(err, datamap.ErrArcsNotArray),
		errors.Is(err, config.ErrInvalidOptions),
		errors.Is(err, projection.ErrUnknownProjection):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "render_failed"
}

func formatOf(r *http.Request) (string, bool) {
	f := r.URL.Query().Get("format")
	if f == "" {
		f = "svg"
	}
	_, ok := contentTypes[f]
	return f, ok
}

func digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		_, _ = io.WriteString(h, p)
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"topologies": s.store.Names(),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, ok := formatOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unsupported format %q", format))
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	key := digest("render", format, string(body))
	if s.serveCached(w, key, format) {
		return
	}

	var req RenderRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	// clients cannot make the server fetch files or URLs
	req.Options.DataURL = ""
	req.Options.Geography.DataURL = ""

	s.renderAndServe(r.Context(), w, key, format, req, false)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	format, ok := formatOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unsupported format %q", format))
		return
	}
	q := r.URL.Query()
	req := RenderRequest{
		Topology: q.Get("topology"),
		Options: config.Options{
			Scope:      chi.URLParam(r, "scope"),
			Projection: q.Get("projection"),
		},
		Animate: q.Get("animate") == "true",
	}
	for name, dst := range map[string]*float64{"width": &req.Options.Width, "height": &req.Options.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid %s %q", name, v))
			return
		}
		*dst = f
	}
	key := digest("map", format, req.Options.Scope, q.Encode())
	if s.serveCached(w, key, format) {
		return
	}
	s.renderAndServe(r.Context(), w, key, format, req, true)
}

func (s *Server) serveCached(w http.ResponseWriter, key, format string) bool {
	out, ok := s.cache.Get(key)
	if !ok {
		return false
	}
	renderTotal.WithLabelValues(format, "cached").Inc()
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", "hit")
	_, _ = w.Write(out)
	return true
}

func (s *Server) renderAndServe(ctx context.Context, w http.ResponseWriter, key, format string, req RenderRequest, overlays bool) {
	start := time.Now()
	out, err := s.render(ctx, format, req, overlays)
	renderDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	if err != nil {
		renderTotal.WithLabelValues(format, "error").Inc()
		status, code := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Error().Err(err).Str(xlog.FieldFormat, format).Msg("render failed")
		}
		writeError(w, status, code, err.Error())
		return
	}
	renderTotal.WithLabelValues(format, "ok").Inc()
	s.cache.Set(key, out, s.cfg.Server.CacheTTL.Std())
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(out)
}

func (s *Server) boundaries(ctx context.Context, name, scope string) (geom.Boundaries, error) {
	switch {
	case name != "":
	case scope != "" && s.store.Has(scope):
		name = scope
	default:
		name = DefaultTopology
	}
	return s.store.Get(ctx, name)
}

// render draws a fresh map for req and encodes it. Configured overlays are
// drawn for the map endpoint only.
func (s *Server) render(ctx context.Context, format string, req RenderRequest, overlays bool) ([]byte, error) {
	opts := req.Options
	config.Merge(&opts, s.cfg.Map)

	b, err := s.boundaries(ctx, req.Topology, opts.Scope)
	if err != nil {
		return nil, err
	}
	m, err := datamap.New(ctx, opts, datamap.WithBoundaries(b), datamap.WithLogger(s.log))
	if err != nil {
		return nil, err
	}
	if overlays {
		if err := m.ApplyOverlays(ctx, s.cfg.Data, s.cfg.Overlays); err != nil {
			return nil, err
		}
	}
	if len(req.Data) > 0 || req.Reset {
		m.UpdateChoropleth(req.Data, req.Reset)
	}
	if req.Graticule != nil {
		if err := m.Graticule(req.Graticule); err != nil {
			return nil, err
		}
	}
	if req.Bubbles != nil {
		if err := m.Bubbles(req.Bubbles, nil); err != nil {
			return nil, err
		}
	}
	if req.Arcs != nil {
		if err := m.Arcs(req.Arcs, nil); err != nil {
			return nil, err
		}
	}
	if req.Labels != nil {
		if err := m.Labels(req.Labels); err != nil {
			return nil, err
		}
	}
	if req.Legend != nil {
		if err := m.Legend(req.Legend); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = render.WritePNG(&buf, m.Scene(), 0, 0)
	case "html":
		err = render.WriteHTML(&buf, m.Scene(), "choromap: "+m.Options().Scope, m.LegendHTML())
	default:
		err = render.WriteSVG(&buf, m.Scene(), render.SVGOptions{Animate: req.Animate, Titles: true})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
