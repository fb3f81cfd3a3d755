// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes paper processing and stored results over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/pharma-papers/internal/export"
	"github.com/pdiddy/pharma-papers/internal/observability"
	"github.com/pdiddy/pharma-papers/internal/paper"
	"github.com/pdiddy/pharma-papers/internal/store"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

// maxBodyBytes caps the size of a posted record batch.
const maxBodyBytes = 32 << 20

// PaperStore is the read side of the result store.
type PaperStore interface {
	List(ctx context.Context, opts store.ListOptions) ([]types.PaperResult, error)
	Get(ctx context.Context, id string) (types.PaperResult, error)
}

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	processor  *paper.Processor
	store      PaperStore
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// New creates a Server. A nil papers disables the /v1/papers and
// /v1/export.csv routes.
func New(cfg types.ServeConfig, processor *paper.Processor, papers PaperStore, metrics *observability.Metrics, logger zerolog.Logger) *Server {
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	s := &Server{
		processor: processor,
		store:     papers,
		metrics:   metrics,
		logger:    logger.With().Str("component", "http-server").Logger(),
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/process", s.process)
		if s.store != nil {
			r.Get("/papers", s.listPapers)
			r.Get("/papers/{id}", s.getPaper)
			r.Get("/export.csv", s.exportCSV)
		}
	})
	return r
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	s.logger.Info().Str("address", ln.Addr().String()).Msg("HTTP server starting")
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// instrument counts requests by route pattern and status.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTP(route, status, time.Since(start).Seconds())
		s.logger.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// process evaluates a posted JSON batch. ?format=csv returns flattened rows.
func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	format := export.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := export.ParseFormat(f)
		if err != nil || (parsed != export.FormatJSON && parsed != export.FormatCSV) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q: use json or csv", f))
			return
		}
		format = parsed
	}

	records, err := paper.DecodeBatch(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, paper.ErrInvalidBatch) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	results, sum := s.processor.ProcessBatch(records)
	s.logger.Info().
		Int("records", sum.Records).
		Int("kept", sum.Kept).
		Int("discarded", sum.Discarded()).
		Msg("batch processed")

	if format == export.FormatCSV {
		writeCSV(w, s.logger, export.Flatten(results))
		return
	}
	if results == nil {
		results = []types.PaperResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) listPapers(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing papers")
		writeError(w, http.StatusInternalServerError, "failed to list papers")
		return
	}
	if results == nil {
		results = []types.PaperResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("paper %s not found", id))
			return
		}
		s.logger.Error().Err(err).Str("external_id", id).Msg("getting paper")
		writeError(w, http.StatusInternalServerError, "failed to get paper")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("exporting papers")
		writeError(w, http.StatusInternalServerError, "failed to export papers")
		return
	}
	writeCSV(w, s.logger, export.Flatten(results))
}

func listOptions(r *http.Request) (store.ListOptions, error) {
	q := r.URL.Query()
	opts := store.ListOptions{Company: q.Get("company")}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid limit %q", l)
		}
		opts.Limit = n
	}
	return opts, nil
}

func writeCSV(w http.ResponseWriter, logger zerolog.Logger, rows []types.ExportRow) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, rows); err != nil {
		logger.Error().Err(err).Msg("writing CSV response")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
