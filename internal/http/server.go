// Package http exposes the cashflow tracker's JSON REST API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cashflow/internal/log"
	"cashflow/internal/services"
	"cashflow/internal/storage"
)

type Server struct {
	http.Server
	repo         *storage.Repository
	cashflows    *services.CashFlowService
	rateLimiter  *rateLimiter
	metrics      *httpMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, repo *storage.Repository, cashflows *services.CashFlowService, rateLimitPerMinute int, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		repo:        repo,
		cashflows:   cashflows,
		rateLimiter: newRateLimiter(rateLimitPerMinute),
		metrics:     newHTTPMetrics(),
	}

	mux.HandleFunc("POST /accounts/add", s.with(s.handleCreateAccount))
	mux.HandleFunc("GET /accounts/list", s.with(s.handleListAccounts))
	mux.HandleFunc("GET /accounts/{id}", s.with(s.handleGetAccount))
	mux.HandleFunc("PATCH /accounts/{id}", s.with(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /accounts/{id}", s.with(s.handleDeleteAccount))

	mux.HandleFunc("POST /cashflow/add", s.with(s.handleCreateCashFlow))
	mux.HandleFunc("GET /cashflow/list", s.with(s.handleListCashFlows))
	mux.HandleFunc("GET /cashflow/{id}", s.with(s.handleGetCashFlow))
	mux.HandleFunc("PATCH /cashflow/{id}", s.with(s.handleUpdateCashFlow))
	mux.HandleFunc("DELETE /cashflow/{id}", s.with(s.handleDeleteCashFlow))

	mux.HandleFunc("POST /dashboard/super", s.with(s.handleDashboard))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	handler := log.Middleware(logger)(log.RequestIDMiddleware(requestID)(mux))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// with adds request logging, rate limiting on writes, security headers and
// metrics around a handler.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := log.FromContext(ctx)

		clientIP := clientAddr(r)

		logger.InfoContext(ctx, "Request started",
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutating requests only; reads stay cheap.
		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.metrics.observe(r.Method, r.URL.Path, rw.statusCode, duration)
		logger.InfoContext(ctx, "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// clientAddr extracts the client IP, honoring the usual proxy headers.
func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// requestID reuses the caller's X-Request-ID when present, otherwise mints one.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
