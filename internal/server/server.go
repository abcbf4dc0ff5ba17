// Package server provides the HTTP JSON API of the site information catalog.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/de-bkg/siteinfo/internal/catalog"
	"github.com/de-bkg/siteinfo/internal/config"
	"github.com/de-bkg/siteinfo/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

// Server serves the catalog.
type Server struct {
	cfg     config.ServiceConfig
	cat     *catalog.Catalog
	metrics *metrics.Collector
	logger  zerolog.Logger
}

// New returns a server for the catalog. The collector may be nil.
func New(cfg config.ServiceConfig, cat *catalog.Catalog, m *metrics.Collector) *Server {
	return &Server{
		cfg:     cfg,
		cat:     cat,
		metrics: m,
		logger:  log.With().Str("component", "server").Logger(),
	}
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "GET /healthz", s.health)
	s.handle(mux, "GET /api/v1/stations", s.stations)
	s.handle(mux, "GET /api/v1/stations/{station}", s.station)
	s.handle(mux, "GET /api/v1/stations/{station}/history", s.history)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

// Run listens on the configured address until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.HTTPAddr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info().Msg("stopped")
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// handle registers h with request metrics and access logging.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)

		d := time.Since(start)
		s.metrics.ObserveRequest(pattern, sw.code, d)
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Int("status", sw.code).Dur("duration", d).Msg("request")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "datasets": len(s.cat.Datasets())})
}

func (s *Server) stations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stations": s.cat.Stations(), "datasets": s.cat.Datasets()})
}

func (s *Server) station(w http.ResponseWriter, r *http.Request) {
	date, err := ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	info, err := s.cat.Info(r.PathValue("station"), date)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	h, err := s.cat.History(r.PathValue("station"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrStationNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.logger.Error().Err(err).Msg("lookup")
	writeError(w, http.StatusInternalServerError, err)
}

// ParseDate parses dates like 2020-06-10 or 2020-06-10T12:00:00Z. An empty string gives the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or RFC3339", s)
	}
	return t.UTC(), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Str("component", "server").Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
