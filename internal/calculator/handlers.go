package calculator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handlers serves the calculator HTTP API.
type Handlers struct {
	store     *SessionStore
	maxDigits int
}

// NewHandlers returns handlers backed by store. maxDigits configures the
// throwaway machines used by Replay.
func NewHandlers(store *SessionStore, maxDigits int) *Handlers {
	return &Handlers{store: store, maxDigits: maxDigits}
}

// ---------------------------------------------------------------------------
// Handlers — binary operations
// ---------------------------------------------------------------------------

// Add handles POST /calculator/add
func (h *Handlers) Add(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, OpAdd)
}

// Subtract handles POST /calculator/subtract
func (h *Handlers) Subtract(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, OpSubtract)
}

// Multiply handles POST /calculator/multiply
func (h *Handlers) Multiply(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, OpMultiply)
}

// Divide handles POST /calculator/divide. Dividing by zero answers 422.
func (h *Handlers) Divide(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, OpDivide)
}

// handleBinaryOp runs Calculate for one operator on a decoded CalcRequest.
func handleBinaryOp(w http.ResponseWriter, r *http.Request, op Operator) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	opName := op.Name()

	ctx, span := tracer.Start(ctx, "calculator."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if math.IsNaN(req.A) || math.IsInf(req.A, 0) || math.IsNaN(req.B) || math.IsInf(req.B, 0) {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid numeric input", fmt.Errorf("a=%g b=%g", req.A, req.B), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.Float64("calculator.operand.a", req.A),
		attribute.Float64("calculator.operand.b", req.B),
	)

	start := time.Now()
	value := Calculate(req.A, req.B, op)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	result, err := value.Float()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusUnprocessableEntity, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Float64("a", req.A),
		zap.Float64("b", req.B),
		zap.Float64("result", result),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, CalcResponse{
		Operation: opName,
		A:         req.A,
		B:         req.B,
		Result:    result,
	})
}

// ---------------------------------------------------------------------------
// Handlers — hosted sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create")
	defer span.End()

	v, err := h.store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.create", "cannot create session", err, statusFor(err), w)
		return
	}

	span.SetAttributes(attribute.String("calculator.session.id", v.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", v.ID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.Header().Set("Location", "/calculator/sessions/"+v.ID)
	handlers.WriteJSON(w, http.StatusCreated, sessionResponse(v))
}

// GetSession handles GET /calculator/sessions/{id}. The ETag is derived
// from the response body, so polling clients get 304 until a key lands.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.get",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()

	v, err := h.store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.get", "cannot read session", err, statusFor(err), w)
		return
	}

	body, err := json.Marshal(sessionResponse(v))
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.get", "cannot encode session", err, http.StatusInternalServerError, w)
		return
	}

	etag := bodyETag(body)
	w.Header().Set("ETag", etag)
	span.SetStatus(codes.Ok, "")

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(append(body, '\n'))
}

// PressKeys handles POST /calculator/sessions/{id}/keys — applies keys in
// order, one child span per key. Keys before an invalid one stay applied.
func (h *Handlers) PressKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.keys",
		trace.WithAttributes(
			attribute.String("calculator.session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	req, err := decodeKeys(r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.keys", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("calculator.keys.count", len(req.Keys)))

	v, err := h.store.Update(id, func(m *Machine) error {
		for i, token := range req.Keys {
			if err := pressKey(ctx, m, i, token); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.keys", "cannot apply keys", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")

	logger.Info("calculator keys applied",
		zap.String("session_id", id),
		zap.Strings("keys", req.Keys),
		zap.String("expression", v.Display.Expression),
		zap.String("value", v.Display.Value),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, sessionResponse(v))
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()

	if err := h.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.delete", "cannot delete session", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("calculator session deleted", zap.String("session_id", id))

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Handler — replay (demonstrates nested spans)
// ---------------------------------------------------------------------------

// Replay handles POST /calculator/keys — runs keys through a fresh machine
// and reports the display after every key. Each key gets a child span, so
// one request produces a multi-level trace.
func (h *Handlers) Replay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.replay",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	req, err := decodeKeys(r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("calculator.keys.count", len(req.Keys)))

	m := New(WithMaxDigits(h.maxDigits))
	steps := make([]ReplayStep, 0, len(req.Keys))

	for i, token := range req.Keys {
		if err := pressKey(ctx, m, i, token); err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "replay", err.Error(), err, statusFor(err), w)
			return
		}
		steps = append(steps, ReplayStep{Key: token, Display: m.Display()})
	}

	d := m.Display()
	span.AddEvent("replay.complete", trace.WithAttributes(
		attribute.String("expression", d.Expression),
		attribute.String("value", d.Value),
		attribute.Int("total_keys", len(req.Keys)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator replay completed",
		zap.Int("keys", len(req.Keys)),
		zap.String("value", d.Value),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, ReplayResponse{
		Steps:   steps,
		Display: d,
		State:   m.Snapshot(),
	})
}

// pressKey applies one token to m inside its own span and records the
// key, operation and error metrics.
func pressKey(ctx context.Context, m *Machine, index int, token string) error {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.key.%d", index),
		trace.WithAttributes(
			attribute.Int("calculator.key.index", index),
			attribute.String("calculator.key.token", token),
		),
	)
	defer span.End()

	k, err := ParseKey(token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	label := metric.WithAttributes(attribute.String("key", k.String()))
	keysCounter.Add(ctx, 1, label)

	// An operator or equals computes when a second operand has been typed.
	pending := m.Operator()
	wasErrored := m.Errored()
	computes := !wasErrored && pending != OpNone && !m.Waiting() &&
		(k.Kind == KeyOperator || k.Action == ActionEquals)

	start := time.Now()
	if err := m.Press(k); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	after := m.Result()
	if computes {
		attrs := metric.WithAttributes(attribute.String("operation", pending.Name()))
		opsCounter.Add(ctx, 1, attrs)
		opsHistogram.Record(ctx, elapsed, attrs)
		if f, err := after.Float(); err == nil {
			resultGauge.Record(ctx, f, attrs)
		}
	}

	if !wasErrored && m.Errored() {
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", pending.Name())))
		span.AddEvent("calculator.error", trace.WithAttributes(
			attribute.String("error", after.Err().Error()),
		))
	}

	d := m.Display()
	span.SetAttributes(
		attribute.String("calculator.display.expression", d.Expression),
		attribute.String("calculator.display.value", d.Value),
	)
	span.SetStatus(codes.Ok, "")
	return nil
}

func decodeKeys(r *http.Request) (KeysRequest, error) {
	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}
	if len(req.Keys) == 0 {
		return req, errors.New("keys array is empty")
	}
	return req, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrDivisionByZero):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func bodyETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(bytes.TrimSpace(body)))
}
