package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendlog/internal/auth"
	"spendlog/internal/idempotency"
	"spendlog/internal/log"
	"spendlog/internal/services"
)

// Options configures the HTTP server.
type Options struct {
	Addr                     string
	JWTSecret                string
	IdempotencyTTL           time.Duration
	IdempotencyMaxEntries    int
	IdempotencySweepInterval time.Duration
}

type Server struct {
	http.Server
	svc         *services.ExpenseService
	logger      *log.Logger
	rateLimiter *rateLimiter
	sweeper     *idempotency.Sweeper

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, svc *services.ExpenseService, logger *log.Logger) *Server {
	logger = logger.WithComponent(log.ComponentHTTP)

	store := idempotency.NewMemoryStore(opts.IdempotencyMaxEntries, opts.IdempotencyTTL)
	sweeper := idempotency.NewSweeper(store, opts.IdempotencySweepInterval, logger)
	sweeper.Start()

	s := &Server{
		svc:         svc,
		logger:      logger,
		rateLimiter: newRateLimiter(),
		sweeper:     sweeper,
	}

	router := mux.NewRouter()
	router.Use(log.Middleware(logger))
	router.Use(s.requestMiddleware)
	router.Use(metricsMiddleware)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	authenticator := auth.NewAuthenticator(opts.JWTSecret, logger)
	dedupe := idempotency.NewMiddleware(store, auth.OwnerFromContext, logger)

	api := router.PathPrefix("/api/expenses").Subrouter()
	api.Use(log.ComponentMiddleware(log.ComponentExpense))
	api.Use(authenticator.Middleware)
	api.Use(dedupe.Wrap)
	api.HandleFunc("", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.handleGetExpense).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.handleUpdateExpense).Methods(http.MethodPut)
	api.HandleFunc("/{id}", s.handleDeleteExpense).Methods(http.MethodDelete)

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: router,
	}

	return s
}

// requestMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientIPFromRequest(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), log.RequestIDContextKey, requestID)
		r = r.WithContext(ctx)

		s.logger.DebugContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if mutatingMethod(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	})
}

func mutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.sweeper != nil {
			s.sweeper.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
