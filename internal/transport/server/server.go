package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"

	"github.com/oshokin/tube-grabber/internal/config"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/service/grabber"
)

const (
	// readHeaderTimeout bounds reading request headers.
	readHeaderTimeout = 10 * time.Second
	// shutdownTimeout bounds draining in-flight requests on shutdown.
	shutdownTimeout = 30 * time.Second
	// corsMaxAge is how long browsers may cache preflight answers.
	corsMaxAge = 12 * time.Hour
	// warningHeader carries one download warning per value.
	warningHeader = "X-Grabber-Warning"
)

// Options configures New.
type Options struct {
	// Config holds validated settings.
	Config *config.Config
	// Service handles info and download requests.
	Service grabber.Service
	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP surface of the grabber.
type Server struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// service handles info and download requests.
	service grabber.Service
	// admission limits requests served at once.
	admission *semaphore.Weighted
	// engine routes requests.
	engine *gin.Engine
}

// New creates a new Server with all routes registered.
func New(opts Options) *Server {
	s := &Server{
		cfg:       opts.Config,
		service:   opts.Service,
		admission: semaphore.NewWeighted(max(opts.Config.MaxConcurrentRequests, 1)),
		engine:    gin.New(),
	}

	s.engine.Use(accessLog(), recovery())

	if len(s.cfg.CORSAllowedOrigins) > 0 {
		s.engine.Use(cors.New(corsConfig(s.cfg.CORSAllowedOrigins)))
	}

	s.engine.GET("/healthz", s.handleHealth)

	if opts.Gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	limited := []gin.HandlerFunc{limitBody(s.cfg.ParsedMaxRequestBody), s.admit}

	for _, prefix := range []string{"", "/api"} {
		group := s.engine.Group(prefix, limited...)
		group.POST("/info", s.handleInfo)
		group.POST("/download", s.handleDownload)
	}

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Infof(ctx, "Listening on %s", s.cfg.ListenAddress)

		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info(ctx, "Shutting down the HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	return nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.ExposeHeaders = []string{"Content-Disposition", "Content-Length", warningHeader}
	cfg.MaxAge = corsMaxAge

	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cfg
}
