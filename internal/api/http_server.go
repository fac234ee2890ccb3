package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"itscare/internal/config"
	"itscare/internal/metrics"
	"itscare/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking ledger over HTTP: CRUD, the filtered
// list, monthly summaries and the CSV/Excel import-export surface.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings *service.BookingService
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, bookings *service.BookingService, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		auth:     NewHTTPAuth(cfg),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/filters", srv.handleFilters)
	mux.HandleFunc("/api/v1/summary", srv.handleSummary)
	mux.HandleFunc("/api/v1/import", srv.handleImport)
	mux.HandleFunc("/api/v1/export/bookings.csv", srv.handleExportBookings)
	mux.HandleFunc("/api/v1/export/summary.csv", srv.handleExportSummary)
	mux.HandleFunc("/api/v1/export/settlement.xlsx", srv.handleExportSettlement)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return srv
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// endpointLabel collapses per-booking paths into one metric label so
// ids do not explode the counter cardinality.
func endpointLabel(path string) string {
	if strings.HasPrefix(path, "/api/v1/bookings/") {
		if strings.HasSuffix(path, "/paid") {
			return "/api/v1/bookings/{id}/paid"
		}
		return "/api/v1/bookings/{id}"
	}
	return path
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
