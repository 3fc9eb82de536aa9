package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/testutil"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	store := calculator.NewSessionStore(calculator.StoreConfig{MaxDigits: calculator.DefaultMaxDigits})
	reg := prometheus.NewRegistry()
	if err := calculator.RegisterSessionMetrics(reg, store); err != nil {
		t.Fatalf("registering session metrics: %v", err)
	}

	return NewRouter(Deps{
		Calculator: calculator.NewHandlers(store, calculator.DefaultMaxDigits),
		Gatherer:   reg,
	})
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterCalculatorAddSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	body := []byte(`{"a":2,"b":3}`)
	req := httptest.NewRequest(http.MethodPost, "/calculator/add", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if got, ok := payload["result"].(float64); !ok || got != 5 {
		t.Fatalf("expected result 5, got %#v", payload["result"])
	}
}

func TestNewRouterSessionLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var created calculator.SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &created)
	if created.Display.Value != "0" {
		t.Fatalf("expected fresh display value %q, got %q", "0", created.Display.Value)
	}

	keys := `{"keys":["2","+","3","*","4","="]}`
	req := httptest.NewRequest(http.MethodPost, "/calculator/sessions/"+created.ID+"/keys", strings.NewReader(keys))
	w = testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var pressed calculator.SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &pressed)
	if pressed.Display.Value != "20" {
		t.Fatalf("expected left-to-right result %q, got %q", "20", pressed.Display.Value)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if !strings.Contains(w.Body.String(), "calculator_sessions_active 1") {
		t.Fatalf("expected one active session in metrics, got:\n%s", w.Body.String())
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/sessions/"+created.ID, nil), router)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.ID, nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}
