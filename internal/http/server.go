// Package http exposes the portfolio as a JSON API. Dashboard and yearly
// report responses are cached per year; any property write clears both
// caches so derived views never serve stale aggregates.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"predial/internal/cache"
	"predial/internal/log"
	"predial/internal/metrics"
	"predial/internal/report"
	"predial/internal/services"
)

// ReportExporter pushes a yearly report to an external spreadsheet. Nil when
// export is not configured.
type ReportExporter interface {
	ExportYearly(ctx context.Context, rep report.Yearly) error
}

type Server struct {
	http.Server

	portfolio *services.PortfolioService
	reports   *report.Builder
	exporter  ReportExporter
	logger    *log.Logger

	rateLimiter *rateLimiter

	dashboardCache *cache.LRUCache[report.Dashboard]
	reportCache    *cache.LRUCache[report.Yearly]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, portfolio *services.PortfolioService, reports *report.Builder, exporter ReportExporter, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		portfolio:      portfolio,
		reports:        reports,
		exporter:       exporter,
		logger:         logger.WithComponent(log.ComponentHTTP),
		rateLimiter:    newRateLimiter(),
		dashboardCache: cache.NewLRUCache[report.Dashboard](20, 5*time.Minute),
		reportCache:    cache.NewLRUCache[report.Yearly](20, 5*time.Minute),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/properties", s.withObservability(s.handleListProperties))
	mux.HandleFunc("POST /api/properties", s.withObservability(s.handleCreateProperty))
	mux.HandleFunc("GET /api/properties/{id}", s.withObservability(s.handleGetProperty))
	mux.HandleFunc("PUT /api/properties/{id}", s.withObservability(s.handleUpdateProperty))
	mux.HandleFunc("DELETE /api/properties/{id}", s.withObservability(s.handleDeleteProperty))

	mux.HandleFunc("PUT /api/properties/{id}/units", s.withObservability(s.handleReplaceUnits))
	mux.HandleFunc("PUT /api/properties/{id}/tenants", s.withObservability(s.handleReplaceTenants))
	mux.HandleFunc("PUT /api/properties/{id}/history", s.withObservability(s.handleReplaceHistory))
	mux.HandleFunc("POST /api/properties/{id}/tenants/{tenantId}/single", s.withObservability(s.handleSetSingleTenant))
	mux.HandleFunc("GET /api/properties/{id}/apportionment", s.withObservability(s.handleApportionment))

	mux.HandleFunc("GET /api/dashboard", s.withObservability(s.handleDashboard))
	mux.HandleFunc("GET /api/reports/yearly", s.withObservability(s.handleYearlyReport))
	mux.HandleFunc("POST /api/reports/export", s.withObservability(s.handleExportReport))

	return s
}

// Shutdown stops the background cleanup goroutines along with the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateDerived clears the dashboard and report caches. Called after
// every successful write.
func (s *Server) invalidateDerived() {
	s.dashboardCache.Clear()
	s.reportCache.Clear()
}

// withObservability adds request ids, security headers, rate limiting on
// writes, structured request logging and Prometheus metrics.
func (s *Server) withObservability(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := log.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, r.Pattern, fmt.Sprintf("%d", rw.statusCode), duration)
		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness means the store answers.
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if _, err := s.portfolio.ListProperties(ctx); err != nil {
		s.logger.ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		respondError(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
