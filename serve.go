package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-svc/api"
	"catalog-svc/circuitbreaker"
	"catalog-svc/handlers"
	"catalog-svc/middleware"
	"catalog-svc/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server. Unless SEED_ON_START is false the
collections are seeded before the server starts listening.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, db, docs, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	shutdownTracing, err := middleware.InitTracing(serviceName, cfg.Tracing)
	if err != nil {
		logger.Error("Failed to initialize tracing", zap.Error(err))
		db.Close()
		return err
	}

	if cfg.SeedOnStart {
		if err := runSeeder(cmd, docs, logger); err != nil {
			logger.Error("Failed to seed collections", zap.Error(err))
			shutdownTracing()
			db.Close()
			return err
		}
	}

	breaker := circuitbreaker.NewCircuitBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.ResetTimeout,
		circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
			logger.Warn("Store circuit breaker changed state",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		}),
	)

	router := gin.New()
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())
	routes := api.NewRouter(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", middleware.PrometheusHandler())

	productHandler := handlers.NewProductHandler(store.Guard(docs, breaker), logger)
	handlers.Register(routes, productHandler)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Catalog Service started", zap.String("addr", cfg.HTTPAddr))

	gracefulShutdown(srv, db, shutdownTracing, cfg.ShutdownTimeout, logger)
	return nil
}

// gracefulShutdown blocks until SIGINT/SIGTERM, then stops the server and
// releases the database and tracer.
func gracefulShutdown(
	srv *http.Server,
	db *sql.DB,
	shutdownTracing func(),
	timeout time.Duration,
	logger *zap.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received. Exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("HTTP server stopped gracefully")
	}

	if err := db.Close(); err != nil {
		logger.Error("Failed to close database", zap.Error(err))
	} else {
		logger.Info("Database connection closed gracefully")
	}

	shutdownTracing()
	logger.Info("Catalog Service exited gracefully")
}
