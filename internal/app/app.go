// Package app wires configuration, logging, the analysis pipeline and the
// HTTP transport into a runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"rxcli/internal/config"
	"rxcli/internal/infrastructure"
	customMiddleware "rxcli/internal/middleware"
	"rxcli/internal/render"
	"rxcli/internal/report"
	handlers "rxcli/internal/transport/http"
)

// Application is the main application container.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Paths  *config.Paths
	Router chi.Router
	Server *http.Server
}

// NewApplication builds the application from loaded configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	paths, err := config.NewPaths(cfg.Paths.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	a := &Application{
		Config: cfg,
		Logger: logger,
		Paths:  paths,
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// setupRouter configures middleware and mounts the handlers. Ordering:
// RequestID → RealIP → Logger → Recoverer → Metrics → RateLimit.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.RequestLogger(a.Logger))
	r.Use(middleware.Recoverer)
	r.Use(customMiddleware.Metrics)

	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.RateLimit(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
		))
	}

	reportHandler := handlers.NewReportHandler(
		report.NewPipeline(a.Logger),
		render.NewRenderer(a.Logger),
		a.Logger,
		a.Config.Report.MaxUploadBytes,
		a.Config.Report.TopN,
	)
	r.Mount("/api", reportHandler.Routes())
	r.Mount("/healthz", handlers.NewHealthHandler().Routes())

	// Metrics endpoint sits outside the rate limiter.
	r.Handle("/metrics", promhttp.Handler())

	a.Router = r
}

// createServer creates the HTTP server.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Stop shuts the server down within the configured timeout.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	a.Logger.InfoContext(ctx, "Shutdown complete")
	return nil
}

// Run serves until interrupted, then shuts down gracefully. The serve and
// signal-wait goroutines share an errgroup context, so a listen error also
// ends the run.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.InfoContext(ctx, "Starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level),
		slog.String("reports_dir", a.Paths.ReportsDir))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}
