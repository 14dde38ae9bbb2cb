// Package api exposes the schedule over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/schedule"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Config       config.ServerConfig
	DefaultColor string              // used when a request has no color
	Registry     *prometheus.Registry // nil means a fresh registry
	Version      string
}

// Server serves the schedule over HTTP.
type Server struct {
	store        *schedule.Store
	log          zerolog.Logger
	engine       *gin.Engine
	metrics      *metrics
	defaultColor string
	version      string
	started      time.Time
}

// New builds the router. The returned Server does not listen until Run.
func New(store *schedule.Store, log zerolog.Logger, opts Options) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		store:        store,
		log:          log.With().Str("component", "api").Logger(),
		engine:       gin.New(),
		metrics:      newMetrics(reg),
		defaultColor: opts.DefaultColor,
		version:      opts.Version,
		started:      time.Now(),
	}

	var limiter *rate.Limiter
	if opts.Config.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.Config.RatePerSec), opts.Config.Burst)
	}

	s.engine.Use(gin.Recovery(), requestID(), accessLog(s.log), s.metrics.instrument())

	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api", rateLimit(limiter, s.metrics))
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.DELETE("/tasks", s.deleteAllTasks)
	api.PUT("/tasks/:id", s.updateTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.GET("/tasks/:id/shift", s.previewShift)
	api.PUT("/tasks/:id/shift", s.shiftTask)
	api.GET("/overlap", s.checkOverlap)

	return s
}

// Handler returns the HTTP handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	s.log.Info().Msg("server exited")
	return nil
}
