package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	httpapi "github.com/GriffinCanCode/driverbook/internal/api/http"
	"github.com/GriffinCanCode/driverbook/internal/api/middleware"
	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
	"github.com/GriffinCanCode/driverbook/internal/domain/tools"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/config"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/logging"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/driverbook/internal/rpc"
	"github.com/GriffinCanCode/driverbook/internal/widget"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer

	store      *catalog.Store
	bundle     *widget.BundleSource
	dispatcher *rpc.Dispatcher

	router *gin.Engine
	http   *http.Server
}

// New wires the catalog, tools, dispatcher and widget behind a gin router.
// Nothing is loaded until the first request or Warm.
func New(cfg *config.Config, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}

	logger.Info("Initializing driverbook server",
		zap.String("addr", cfg.Addr()),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.String("catalog_url", cfg.Catalog.URL),
		zap.String("widget_bundle", cfg.Widget.BundlePath),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New(logger.Zap())

	store := catalog.NewStore(catalogSource(cfg, logger), logger).
		Retry(cfg.Catalog.LoadAttempts, cfg.Catalog.RetryWait)
	store.OnLoad(func(count int, err error) {
		metrics.SetCatalogDrivers(count)
	})

	bundle := widget.NewBundleSource(cfg.Widget.BundlePath, widget.BundleOptions{
		Logger:   logger,
		TimeZone: cfg.Widget.Timezone,
	})
	bundle.OnLoad(metrics.SetWidgetBundle)

	registry := tools.NewDriverRegistry(store)
	dispatcher := rpc.NewDispatcher(registry, bundle,
		rpc.WithLogger(logger),
		rpc.WithMetrics(metrics),
		rpc.WithTracer(tracer),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSFromOrigins(cfg.CORS.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := httpapi.NewHandlers(httpapi.Deps{
		Store:      store,
		Tools:      registry,
		Dispatcher: dispatcher,
		Bundle:     bundle,
		Renderer:   widget.NewRenderer(cfg.Location()),
		Metrics:    metrics,
		Logger:     logger,
	})
	handlers.Register(router)

	s := &Server{
		config:     cfg,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		store:      store,
		bundle:     bundle,
		dispatcher: dispatcher,
		router:     router,
	}
	s.http = &http.Server{
		Addr:    cfg.Addr(),
		Handler: s.Handler(),
	}
	return s
}

func catalogSource(cfg *config.Config, logger *logging.Logger) catalog.Source {
	if cfg.Catalog.URL != "" {
		opts := catalog.DefaultHTTPOptions()
		opts.Logger = logger.Zap()
		return catalog.NewHTTPSource(cfg.Catalog.URL, opts)
	}
	return catalog.FileSource{Path: cfg.Catalog.Path}
}

// Handler returns the root handler with response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Metrics returns the server's metrics collector.
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Warm loads the catalog and widget bundle ahead of the first request.
func (s *Server) Warm(ctx context.Context) {
	s.store.Load(ctx)
	s.bundle.Code(ctx)
	s.logger.Info("Server warmed",
		zap.Int("drivers", s.store.Len(ctx)),
		zap.Bool("widget", s.bundle.Loaded(ctx)),
	)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.Close(shutdownCtx)
}

// Close gracefully shuts down the server
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
		err = fmt.Errorf("shutdown: %w", err)
	}
	s.tracer.Close()
	return err
}
