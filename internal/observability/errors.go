package observability

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// RecordError centralises error handling across all domains: records the error
// on the span, increments the provided error counter, logs with trace context,
// and writes a JSON error HTTP response. Client errors (4xx) log at warn.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName, msg string, err error, status int, w http.ResponseWriter) {
	requestID := RequestIDFromContext(ctx)

	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", opName)))

	level := zapcore.ErrorLevel
	if status < http.StatusInternalServerError {
		level = zapcore.WarnLevel
	}
	logger.Log(level, msg,
		zap.String("operation", opName),
		zap.Int("status", status),
		zap.Error(err),
		zap.String("request_id", requestID),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:     msg,
		RequestID: requestID,
	})
}
