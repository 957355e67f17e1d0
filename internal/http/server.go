// Package http serves the tracker as a local JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	applog "myy/internal/log"
	"myy/internal/middleware/ratelimit"
	"myy/internal/middleware/security"
	"myy/internal/middleware/trace"
	"myy/internal/services"
)

// Config holds server configuration.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	RateLimitBurst     int
	Logger             *applog.Logger
	// Ready is probed by /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	tracker  *services.Tracker
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	ready    func(ctx context.Context) error
	started  time.Time
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, tracker *services.Tracker) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		tracker:  tracker,
		logger:   logger,
		detector: security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Burst:             cfg.RateLimitBurst,
		}),
		ready:   cfg.Ready,
		started: time.Now(),
		now:     time.Now,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.rejectSuspicious)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited))

		r.Get("/categories", s.handleCategories)

		r.Get("/entries", s.handleListEntries)
		r.Post("/entries", s.handleCreateEntry)
		r.Post("/entries/trash-month", s.handleTrashMonth)
		r.Delete("/entries/{id}", s.handleDeleteEntry)

		r.Get("/summary", s.handleSummary)

		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Post("/tasks/trash-completed", s.handleTrashCompleted)
		r.Post("/tasks/{id}/toggle", s.handleToggleTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)

		r.Get("/trash", s.handleListTrash)
		r.Delete("/trash", s.handlePurgeTrash)
		r.Post("/trash/{kind}/{id}/restore", s.handleRestore)
		r.Delete("/trash/{kind}/{id}", s.handleRemoveFromTrash)

		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *Server) rejectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(), "Suspicious request rejected",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldPath, r.URL.Path)
			writeError(w, http.StatusBadRequest, "bad request")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// Shutdown stops the limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
