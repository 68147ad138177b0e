// Package http serves the JSON API: record and income-source writes,
// recurring templates, and the snapshot/trend report endpoints.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"hearth/internal/cache"
	"hearth/internal/config"
	"hearth/internal/ledger"
	"hearth/internal/log"
	"hearth/internal/services"
)

type Server struct {
	httpServer *http.Server
	store      ledger.Store
	records    *services.RecordService
	reports    *services.ReportService

	logger     *log.Logger
	structured *log.StructuredLogger

	limiter *rateLimiter
	metrics *securityMetrics

	snapshotCache *cache.LRUCache[snapshotResponse]
	trendCache    *cache.LRUCache[trendResponse]
	cacheManager  *cache.Manager

	defaultHousehold string

	shutdownOnce sync.Once
}

func NewServer(cfg *config.Config, store ledger.Store, records *services.RecordService, reports *services.ReportService, logger *log.Logger) *Server {
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		store:            store,
		records:          records,
		reports:          reports,
		logger:           httpLogger,
		structured:       log.NewStructuredLogger(httpLogger),
		limiter:          newRateLimiter(cfg.RateLimitPerMinute),
		metrics:          &securityMetrics{},
		snapshotCache:    cache.NewLRUCache[snapshotResponse](cfg.CacheEntries, cfg.CacheTTL),
		trendCache:       cache.NewLRUCache[trendResponse](cfg.CacheEntries, cfg.CacheTTL),
		cacheManager:     cache.NewManager(),
		defaultHousehold: cfg.DefaultHouseholdID,
	}

	s.cacheManager.Register(s.snapshotCache)
	s.cacheManager.Register(s.trendCache)
	s.cacheManager.StartCleanup(cfg.CacheTTL)

	mux := http.NewServeMux()
	s.routes(mux)

	handler := log.Middleware(httpLogger)(mux)
	handler = log.RequestIDMiddleware(requestIDFromHeader)(handler)
	handler = s.secure(handler)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /records", s.handleCreateRecord)
	mux.HandleFunc("GET /records", s.handleListRecords)
	mux.HandleFunc("DELETE /records/{id}", s.handleDeleteRecord)

	mux.HandleFunc("POST /income-sources", s.handleCreateIncomeSource)
	mux.HandleFunc("GET /income-sources", s.handleListIncomeSources)

	mux.HandleFunc("POST /templates", s.handleCreateTemplate)
	mux.HandleFunc("GET /members", s.handleListMembers)

	mux.HandleFunc("GET /reports/snapshot", s.handleSnapshotReport)
	mux.HandleFunc("GET /reports/trend", s.handleTrendReport)
}

// secure wraps the router with client IP extraction, rate limiting,
// suspicious-request detection, security headers and access logging.
func (s *Server) secure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		ctx := r.Context()

		if detectSuspiciousRequest(r, s.metrics) {
			s.logger.WarnContext(ctx, "Suspicious request detected",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path,
				"user_agent", r.Header.Get("User-Agent"))
		}

		// Probes stay cheap and unthrottled.
		if !isHealthPath(r.URL.Path) && !s.limiter.allow(clientIP) {
			atomic.AddInt64(&s.metrics.rateLimitHits, 1)
			s.logger.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "path", r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		s.structured.LogHTTPStart(ctx, r, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

func isHealthPath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

// responseWriter captures the status code for access logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestIDFromHeader honors an upstream X-Request-ID, generating one
// otherwise.
func requestIDFromHeader(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 {
		return id
	}
	return generateRequestID()
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// householdID resolves the household a request targets. Single-household
// deployments never send the parameter and get the configured default.
func (s *Server) householdID(r *http.Request) string {
	if hh := strings.TrimSpace(r.URL.Query().Get("household")); hh != "" {
		return hh
	}
	return s.defaultHousehold
}

// invalidateReports drops every cached report for a household. Called
// on any write that can change aggregates.
func (s *Server) invalidateReports(householdID string) {
	prefix := householdID + ":"
	s.snapshotCache.DeletePrefix(prefix)
	s.trendCache.DeletePrefix(prefix)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ready")
}

// Start blocks serving requests until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the cache janitor. Safe
// to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("Shutting down HTTP server")
		s.cacheManager.Stop()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// Handler exposes the fully wrapped handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
