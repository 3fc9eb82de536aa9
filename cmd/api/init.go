package main

import (
	"context"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
)

// initTelemetry starts the OTel providers and the calculator's metric
// instruments. The returned shutdown flushes them in reverse order.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context), error) {
	var shutdowns []func(context.Context) error

	shutdown := func(ctx context.Context) {
		for i := len(shutdowns) - 1; i >= 0; i-- {
			_ = shutdowns[i](ctx)
		}
	}

	traceShutdown, err := observability.InitTracing(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}
	shutdowns = append(shutdowns, traceShutdown)

	metricShutdown, err := observability.InitMetrics(ctx, cfg.ServiceName)
	if err != nil {
		shutdown(ctx)
		return nil, err
	}
	shutdowns = append(shutdowns, metricShutdown)

	if cfg.OTLPLogs {
		logShutdown, err := observability.InitLogging(ctx, cfg.ServiceName)
		if err != nil {
			shutdown(ctx)
			return nil, err
		}
		shutdowns = append(shutdowns, logShutdown)
	}

	if err := calculator.InitMetrics(); err != nil {
		shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}
