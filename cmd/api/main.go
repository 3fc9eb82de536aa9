package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
)

func main() {

	cfg, err := config.Load(afero.NewOsFs())
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logger
	if err := observability.InitLogger(cfg.Development); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics and optional OTLP logs
	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("telemetry init failed", zap.Error(err))
	}
	defer shutdownTelemetry(context.Background())

	// Sessions
	store := calculator.NewSessionStore(calculator.StoreConfig{
		TTL:         cfg.Calculator.SessionTTL,
		MaxSessions: cfg.Calculator.MaxSessions,
		MaxDigits:   cfg.Calculator.MaxDigits,
	})
	if err := calculator.RegisterSessionMetrics(prometheus.DefaultRegisterer, store); err != nil {
		observability.Logger.Fatal("metrics registration failed", zap.Error(err))
	}
	go store.Run(ctx, cfg.Calculator.SweepInterval)

	// Router
	router := server.NewRouter(server.Deps{
		Calculator: calculator.NewHandlers(store, cfg.Calculator.MaxDigits),
		Gatherer:   prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("service", cfg.ServiceName),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	waitForShutdown(srv, cfg)
}

func waitForShutdown(srv *http.Server, cfg config.Config) {

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("graceful shutdown failed", zap.Error(err))
		return
	}
	observability.Logger.Info("server stopped")
}
