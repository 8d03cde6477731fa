package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Queun/ai-teach-platform-sub000/internal/di"
	"github.com/Queun/ai-teach-platform-sub000/internal/infra/config"
	"github.com/Queun/ai-teach-platform-sub000/internal/infra/logger"
	appOtel "github.com/Queun/ai-teach-platform-sub000/internal/infra/otel"
	custommw "github.com/Queun/ai-teach-platform-sub000/internal/middleware"
	"github.com/Queun/ai-teach-platform-sub000/internal/rest"
)

// Run loads configuration, starts the API server and blocks until ctx is
// cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	otelCfg := appOtel.ConfigFrom(cfg.OTel)
	otelShutdown, err := appOtel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	logger.InitWithOTel(cfg.Logging.Level, otelCfg.Enabled)
	logger.Logger.Info("Starting jiaoxue search",
		"service", otelCfg.ServiceName,
		"otel_enabled", otelCfg.Enabled,
		"cms", cfg.CMS.BaseURL,
		"partial_results", cfg.Search.PartialResults,
		"news_feeds", len(cfg.Feeds.NewsFeedURLs),
	)

	container, err := di.NewApplicationComponents(cfg)
	if err != nil {
		logger.GlobalContext.LogError(ctx, "di.build", err)
		return err
	}

	jobsCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	container.Jobs.Start(jobsCtx)

	e := NewEcho(cfg, container, otelCfg.Enabled)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           e,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Logger.Info("http listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.GlobalContext.LogError(ctx, "http.serve", err)
			stopJobs()
			container.Jobs.Wait()
			_ = otelShutdown(context.Background())
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Logger.Info("Shutting down")
	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	stopJobs()
	container.Jobs.Wait()
	if err := otelShutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		logger.Logger.Error("Shutdown finished with errors", "error", err)
		return err
	}
	logger.Logger.Info("Shutdown complete")
	return nil
}

// NewEcho builds the router with the full middleware chain.
func NewEcho(cfg *config.Config, container *di.ApplicationComponents, tracing bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if tracing {
		e.Use(otelecho.Middleware(cfg.OTel.ServiceName))
	}
	e.Use(custommw.RequestIDMiddleware())
	e.Use(middleware.Recover())
	if tracing {
		e.Use(custommw.OTelStatusMiddleware())
	}
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, custommw.HeaderRequestID},
		MaxAge:       86400,
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(custommw.RateLimitMiddleware(cfg.RateLimit))
	e.Use(custommw.LoggingMiddleware(logger.Logger))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
	}))

	rest.RegisterRoutes(e, container.Handler)
	return e
}
