// Package app wires configuration, logging, telemetry, services, and
// the HTTP router into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/MisterMushn/bilanzieren/internal/config"
	apierrors "github.com/MisterMushn/bilanzieren/internal/errors"
	"github.com/MisterMushn/bilanzieren/internal/infrastructure"
	custommw "github.com/MisterMushn/bilanzieren/internal/middleware"
	"github.com/MisterMushn/bilanzieren/internal/services"
	handlers "github.com/MisterMushn/bilanzieren/internal/transport/http"
	ws "github.com/MisterMushn/bilanzieren/internal/websocket"
	"github.com/MisterMushn/bilanzieren/pkg/contracts"
)

// Application is the composed service: one HTTP server, one websocket
// hub, one in-memory workspace store.
type Application struct {
	Config           *config.Config
	Logger           *slog.Logger
	Router           *chi.Mux
	Server           *http.Server
	WorkspaceService *services.WorkspaceService
	HealthService    *services.HealthService
	WebSocketHub     *ws.Hub
	OTelProviders    *infrastructure.OTelProviders
	FrontendFS       fs.FS

	closeLogger func() error
}

// NewApplication builds the application from configuration. frontendFS
// may be nil; the API then runs without the embedded UI.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg, frontendFS)
}

// NewApplicationWithConfig builds the application from an explicit
// configuration, used by tests and the CLI.
func NewApplicationWithConfig(cfg *config.Config, frontendFS fs.FS) (*Application, error) {
	logger, closeLogger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(logger, nil)
	if err != nil {
		closeLogger()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := infrastructure.NewAppMetrics(otelProviders.Meter)
	if err != nil {
		closeLogger()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	hub := ws.NewHub(logger)

	workspaceService := services.NewWorkspaceService(services.WorkspaceServiceOptions{
		MaxWorkspaces: cfg.Limits.MaxWorkspaces,
		PreviewRowCap: cfg.Limits.PreviewRowCap,
		KeywordCap:    cfg.Limits.KeywordCap,
		Logger:        logger,
		Metrics:       metrics,
		Broadcaster:   hub,
	})
	healthService := services.NewHealthService(workspaceService, logger)

	app := &Application{
		Config:           cfg,
		Logger:           logger,
		WorkspaceService: workspaceService,
		HealthService:    healthService,
		WebSocketHub:     hub,
		OTelProviders:    otelProviders,
		FrontendFS:       frontendFS,
		closeLogger:      closeLogger,
	}

	app.setupRouter(metrics)
	app.Server = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// setupRouter assembles the middleware chain and mounts every route.
// The websocket upgrade sits outside the full chain because response
// wrappers break connection hijacking.
func (a *Application) setupRouter(metrics *infrastructure.AppMetrics) {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	wsHandler := handlers.NewWebSocketHandler(a.WebSocketHub, a.Logger)
	r.Handle("/ws", wsHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		otelMiddleware := custommw.NewOTelMiddleware(a.OTelProviders, metrics)
		r.Use(otelMiddleware.Handler)
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(custommw.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)

		if a.FrontendFS != nil {
			a.setupFrontend(r)
		}
	})

	a.Router = r
}

// setupAPIRoutes mounts the JSON API under /api.
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		workspaceHandler := handlers.NewWorkspaceHandler(
			a.WorkspaceService,
			a.Config.Limits.MaxUploadBytes,
			errorHandler,
			a.Logger,
		)
		r.Mount("/workspaces", workspaceHandler.Routes())
	})
}

// setupFrontend serves the embedded single-page UI. Unmatched GET
// routes fall through to index.html for client-side routing.
func (a *Application) setupFrontend(r chi.Router) {
	fileServer := http.FileServer(http.FS(a.FrontendFS))

	r.Group(func(r chi.Router) {
		r.Use(custommw.Compress(5))
		r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
			path := req.URL.Path
			if path != "/" {
				if _, err := fs.Stat(a.FrontendFS, path[1:]); err == nil {
					fileServer.ServeHTTP(w, req)
					return
				}
			}
			index, err := fs.ReadFile(a.FrontendFS, "index.html")
			if err != nil {
				http.Error(w, "frontend not available", http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(index)
		})
	})
}

// Run starts the server and blocks until the context is cancelled or
// SIGINT/SIGTERM arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.WebSocketHub.Start()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		return a.Stop(context.Background())
	})

	return group.Wait()
}

// Stop shuts the application down within the configured timeout.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("server shutdown: %w", err)
	}

	a.WebSocketHub.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("telemetry shutdown: %w", err)
	}

	if a.closeLogger != nil {
		a.closeLogger()
	}

	a.Logger.Info("shutdown complete")
	return firstErr
}
