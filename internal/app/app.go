package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"wastelookup/internal/collection"
	"wastelookup/internal/config"
	apierrors "wastelookup/internal/errors"
	"wastelookup/internal/files"
	"wastelookup/internal/infrastructure"
	customMiddleware "wastelookup/internal/middleware"
	"wastelookup/internal/security"
	"wastelookup/internal/services"
	handlers "wastelookup/internal/transport/http"
	"wastelookup/internal/watcher"
)

const AppName = "wastelookup"

// BuildTime is set at link time.
var BuildTime = ""

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Collection    *services.CollectionService
	Health        *services.HealthService
	AdminGate     *security.AdminGate
	// Watcher is nil unless data.watch is enabled.
	Watcher *watcher.SourceWatcher

	background sync.WaitGroup
}

// NewApplication loads configuration from the environment and config file,
// initializes the process logger and builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", infrastructure.Version),
		slog.String("source", cfg.Data.Source))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		AdminGate:     security.NewAdminGate(cfg.Security.AdminKey),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices builds the collection and health services and the
// optional source watcher.
func (a *Application) initializeServices() error {
	path, err := files.NewDiscovery(infrastructure.WithComponent(a.Logger, "discovery")).Resolve(a.Config.Data.Source)
	if err != nil {
		return fmt.Errorf("failed to resolve data source: %w", err)
	}
	source, err := collection.OpenSource(path, a.Config.Data.Sheet)
	if err != nil {
		return fmt.Errorf("failed to open data source: %w", err)
	}

	a.Collection = services.NewCollectionService(services.CollectionServiceConfig{
		Source:     source,
		Columns:    a.Config.Data.Columns(),
		PricePerKg: a.Config.Data.PricePerKg,
		Metrics:    a.Metrics,
		Tracer:     a.OTelProviders.Tracer,
	}, a.Logger)

	a.Health = services.NewHealthService(infrastructure.Version, BuildTime, a.Collection, a.Logger)

	if a.Config.Data.Watch {
		w, err := watcher.New(path, a.Config.Data.WatchDebounce, a.Collection,
			infrastructure.WithComponent(a.Logger, "watcher"))
		if err != nil {
			return fmt.Errorf("failed to watch data source: %w", err)
		}
		a.Watcher = w
	}

	if !a.AdminGate.Enabled() {
		a.Logger.Info("admin controls disabled: no admin key configured")
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	// Ordering: RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		handlers.NewHealthHandler(a.Health, a.Logger).Routes(r)

		collectionHandler := handlers.NewCollectionHandler(a.Collection, a.Logger, errorHandler)
		r.Mount("/collections", collectionHandler.Routes())

		adminHandler := handlers.NewAdminHandler(a.Collection, a.AdminGate, a.Logger, errorHandler)
		r.Mount("/admin", adminHandler.Routes())
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
			security.AdminTokenHeader,
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
	if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = a.Config.Security.AllowedOrigins
	}
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts background work and the HTTP server. A server failure
// calls cancel so Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", infrastructure.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if a.Watcher != nil {
		a.background.Add(1)
		go func() {
			defer a.background.Done()
			if err := a.Watcher.Run(ctx); err != nil {
				a.Logger.ErrorContext(ctx, "source watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	if a.Config.Data.Preload {
		a.preload(ctx)
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// preload loads the dataset before serving. A failure is logged and left
// to the first request, which reports it to the caller.
func (a *Application) preload(ctx context.Context) {
	if _, err := a.Collection.Dataset(ctx); err != nil {
		a.Logger.WarnContext(ctx, "dataset preload failed", slog.String("error", err.Error()))
		return
	}
	stats := a.Collection.Stats()
	a.Logger.InfoContext(ctx, "dataset preloaded",
		slog.String("dataset_id", stats.DatasetID),
		slog.Int("records", stats.Records))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.Watcher != nil {
		if err := a.Watcher.Close(); err != nil {
			a.Logger.WarnContext(ctx, "Error closing source watcher", slog.String("error", err.Error()))
		}
	}
	a.background.Wait()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	// Stop the watcher goroutine before waiting for it.
	cancel()
	return a.Stop(context.Background())
}
