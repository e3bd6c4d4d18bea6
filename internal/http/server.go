package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// Options tunes the per-IP rate limiter, the report cache and the allowed
// cross-origin caller.
type Options struct {
	RateLimitPerMinute int
	ReportCacheTTL     time.Duration
	CORSOrigin         string
}

func DefaultOptions() Options {
	return Options{
		RateLimitPerMinute: 60,
		ReportCacheTTL:     time.Minute,
		CORSOrigin:         "*",
	}
}

type Server struct {
	http.Server
	auth        *services.AuthService
	corsOrigin  string
	rateLimiter *rateLimiter

	// Reports are the expensive queries, cached per store and
	// invalidated by any mutation on that store.
	reportCache *cache.LRUCache[core.Report]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, auth *services.AuthService, expenses, transactions *services.EntryService, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:             auth,
		corsOrigin:       opts.CORSOrigin,
		rateLimiter:      newRateLimiter(opts.RateLimitPerMinute),
		reportCache:      cache.NewLRUCache[core.Report](16, opts.ReportCacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("OPTIONS /api/", s.handlePreflight)

	mux.HandleFunc("POST /api/auth/register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.withMiddleware(s.handleLogin))

	s.mountEntryRoutes(mux, "/api/expenses", expenses)
	s.mountEntryRoutes(mux, "/api/transactions", transactions)

	return s
}

func (s *Server) mountEntryRoutes(mux *http.ServeMux, prefix string, svc *services.EntryService) {
	h := &entryHandlers{svc: svc, srv: s}

	mux.HandleFunc("GET "+prefix, s.withMiddleware(h.list))
	mux.HandleFunc("GET "+prefix+"/summary", s.withMiddleware(h.report))
	mux.HandleFunc("GET "+prefix+"/categories", s.withMiddleware(h.categories))
	mux.HandleFunc("GET "+prefix+"/{id}", s.withMiddleware(h.get))
	mux.HandleFunc("POST "+prefix, s.withMiddleware(h.create))
	mux.HandleFunc("PUT "+prefix+"/{id}", s.withMiddleware(h.update))
	mux.HandleFunc("DELETE "+prefix+"/{id}", s.withMiddleware(h.remove))
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		// Rate limit mutating requests only.
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		s.setCORSHeaders(w)

		rw := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseRecorder wraps http.ResponseWriter to capture the status code.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.setCORSHeaders(w)
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) setCORSHeaders(w http.ResponseWriter) {
	if s.corsOrigin == "" {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	s.setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.reportCache.CleanExpired(); removed > 0 {
				slog.Debug("Report cache cleanup completed", "entries_removed", removed)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
