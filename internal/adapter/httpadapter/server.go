package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/subway-facility-dashboard/internal/dashboard"
	"github.com/couchcryptid/subway-facility-dashboard/internal/presenter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Message shown when the datasets could not be loaded.
const textUpstreamFailure = "🚨 데이터를 불러오지 못했습니다. 잠시 후 다시 시도하세요."

// Lookuper answers a station query.
type Lookuper interface {
	Lookup(ctx context.Context, query string) (presenter.Report, error)
}

// Server exposes the lookup page, the JSON API, and health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	lookup     Lookuper
	renderer   *presenter.Renderer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /, /api/stations, /healthz, /readyz,
// and /metrics routes.
func NewServer(addr string, lookup Lookuper, renderer *presenter.Renderer, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// A lookup may wait for a full dataset refresh.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		lookup:   lookup,
		renderer: renderer,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/stations", s.handleStations)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = withRequestID(mux, logger)
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), s.logger)
	query := r.URL.Query().Get("q")
	page := presenter.Page{Query: query}
	status := http.StatusOK

	if strings.TrimSpace(query) != "" {
		report, err := s.lookup.Lookup(r.Context(), query)
		switch {
		case errors.Is(err, dashboard.ErrEmptyQuery):
		case err != nil:
			logger.Error("station lookup failed", "query", query, "error", err)
			page.Error = textUpstreamFailure
			status = http.StatusBadGateway
		default:
			page.Report = &report
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.renderer.Render(w, page); err != nil {
		logger.Error("render page", "error", err)
	}
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), s.logger)
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody("missing query parameter q"))
		return
	}

	report, err := s.lookup.Lookup(r.Context(), query)
	if err != nil {
		if errors.Is(err, dashboard.ErrEmptyQuery) {
			sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody("missing query parameter q"))
			return
		}
		logger.Error("station lookup failed", "query", query, "error", err)
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorBody("station data unavailable"))
		return
	}

	if !report.Found() {
		sharedobs.WriteJSON(w, http.StatusNotFound, report)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
