// Package server exposes the citation graph over an HTTP JSON API.
//
// All read endpoints serve from the engine's current snapshot and never
// trigger recomputation; POST /api/refresh is the only way to change what the
// API serves. This keeps read latency flat and makes cache behavior explicit.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pepgraph/pepgraph/pkg/engine"
	"github.com/pepgraph/pepgraph/pkg/errors"
	"github.com/pepgraph/pepgraph/pkg/graph"
	"github.com/pepgraph/pepgraph/pkg/observability"
	"github.com/pepgraph/pepgraph/pkg/pep"
)

// DocumentSource supplies the documents for a refresh. The server owns no
// document storage; the caller decides where documents come from.
type DocumentSource func(ctx context.Context) ([]pep.Document, error)

// Server serves the citation graph API.
type Server struct {
	engine *engine.Engine
	source DocumentSource
	logger *log.Logger
	router *chi.Mux
}

// New creates a server around an engine and a document source.
func New(eng *engine.Engine, source DocumentSource, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		engine: eng,
		source: source,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("serving citation graph API", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/peps", s.handleListRecords)
		r.Get("/peps/{number}", s.handleGetRecord)
		r.Get("/citations", s.handleCitations)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/positions", s.handlePositions)
		r.Get("/graph", s.handleGraph)
		r.Post("/refresh", s.handleRefresh)
	})

	return r
}

// observe reports request timing to the API hooks and logs slow requests.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.API().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.API().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.logger.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  s.engine.Ready(),
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Records)
}

// recordDetail combines everything the API knows about one document.
type recordDetail struct {
	pep.Record
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
	Degree    int     `json:"degree"`
	PageRank  float64 `json:"pagerank"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Cites     []int   `json:"cites"`
	CitedBy   []int   `json:"cited_by"`
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "pep number must be a positive integer"))
		return
	}

	for _, rec := range snap.Records {
		if rec.Number != number {
			continue
		}
		detail := recordDetail{Record: rec}
		if nm, ok := snap.Metrics[number]; ok {
			detail.InDegree = nm.InDegree
			detail.OutDegree = nm.OutDegree
			detail.Degree = nm.Degree
			detail.PageRank = nm.PageRank
		}
		if pos, ok := snap.Positions[number]; ok {
			detail.X = pos.X
			detail.Y = pos.Y
		}
		if snap.Graph.HasNode(number) {
			detail.Cites = snap.Graph.Cites(number)
			detail.CitedBy = snap.Graph.CitedBy(number)
		}
		writeJSON(w, http.StatusOK, detail)
		return
	}

	s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "pep not found: %d", number))
}

func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Rows)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Metrics)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Positions)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := graph.Write(snap.Graph, w); err != nil {
		s.logger.Error("write graph response", "err", err)
	}
}

// refreshResponse summarizes a completed refresh.
type refreshResponse struct {
	SnapshotID  string `json:"snapshot_id"`
	GraphHash   string `json:"graph_hash"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	ParseFailed int    `json:"parse_failed"`
	GraphHit    bool   `json:"graph_cache_hit"`
	MetricsHit  bool   `json:"metrics_cache_hit"`
	LayoutHit   bool   `json:"layout_cache_hit"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	docs, err := s.source(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	refresh := s.engine.Refresh
	if r.URL.Query().Get("force") == "true" {
		refresh = s.engine.ForceRefresh
	}

	result, err := refresh(r.Context(), docs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("refreshed snapshot",
		"snapshot", result.SnapshotID,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount)

	writeJSON(w, http.StatusOK, refreshResponse{
		SnapshotID:  result.SnapshotID,
		GraphHash:   result.GraphHash,
		Nodes:       result.Stats.NodeCount,
		Edges:       result.Stats.EdgeCount,
		ParseFailed: result.Stats.ParseFailed,
		GraphHit:    result.CacheInfo.GraphHit,
		MetricsHit:  result.CacheInfo.MetricsHit,
		LayoutHit:   result.CacheInfo.LayoutHit,
	})
}

// errorResponse is the JSON shape of every error reply.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  code,
	})
}

// statusForCode maps structured error codes to HTTP status codes.
func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidValue, errors.ErrCodeMissingField:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
