// Package server exposes map rendering over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"choromap/internal/config"
	xlog "choromap/internal/log"
)

const shutdownTimeout = 10 * time.Second

// Server renders maps against the configured topologies.
type Server struct {
	cfg    config.File
	store  *Store
	cache  Cache
	log    zerolog.Logger
	router chi.Router
}

// New builds the server and its routes. Unset settings take the
// application defaults. The cache is cleared whenever a topology is reloaded.
func New(cfg config.File, store *Store, cache Cache) *Server {
	config.Merge(&cfg, config.DefaultFile())
	s := &Server{
		cfg:   cfg,
		store: store,
		cache: cache,
		log:   xlog.WithComponent("server"),
	}
	store.OnChange(func(name string) {
		s.cache.Clear()
		s.log.Info().Str("topology", name).Msg("render cache cleared")
	})
	s.router = s.routes()
	return s
}

// Sources returns the topology sources named by an application file. The
// top-level topology is registered as DefaultTopology.
func Sources(cfg config.File) map[string]string {
	out := map[string]string{}
	for name, src := range cfg.Server.Topologies {
		out[name] = src
	}
	if cfg.Topology != "" {
		out[DefaultTopology] = cfg.Topology
	}
	return out
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(s.cfg.Server.RateLimit, time.Minute))
		r.Post("/v1/render", s.handleRender)
		r.Get("/v1/maps/{scope}", s.handleMap)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if config.Enabled(s.cfg.Server.Watch) {
		if err := s.store.Watch(ctx); err != nil {
			return err
		}
	}
	srv := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("listen", srv.Addr).Msg("server started")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info().Msg("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur(xlog.FieldDuration, time.Since(start)).
			Msg("request")
	})
}
