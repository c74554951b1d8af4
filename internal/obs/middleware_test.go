package obs_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("pos", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/health/ready"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rr.Code)
	}

	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/health/ready", "204"))
	if total != 1 {
		t.Fatalf("expected counter to be 1, got %v", total)
	}

	samples := testutil.CollectAndCount(metrics.ReqDur)
	if samples == 0 {
		t.Fatalf("expected histogram sample")
	}

	if metrics.InFlight != nil {
		if val := testutil.ToFloat64(metrics.InFlight); val != 0 {
			t.Fatalf("expected no in-flight requests, got %v", val)
		}
	}
}

func TestRequestLoggerUsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := obs.RequestLogger{Logger: zerolog.New(&buf)}

	r := chi.NewRouter()
	r.Use(logger.Middleware)
	r.Use(obs.RoutePatternMiddleware)
	r.Get("/api/v1/sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/abc", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", rr.Code)
	}
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte(`"status":202`)) {
		t.Fatalf("expected status in log, got %s", out)
	}
	if !bytes.Contains([]byte(out), []byte(`"path":"/api/v1/sales/abc"`)) {
		t.Fatalf("expected path in log, got %s", out)
	}
}

func TestSpanNameFallsBackToPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/cart/commit", nil)
	if got := obs.SpanName("", req); got != "POST /api/v1/pos/cart/commit" {
		t.Fatalf("unexpected span name %q", got)
	}
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/api/v1/pos/cart/*"))
	if got := obs.SpanName("", req); got != "POST /api/v1/pos/cart/*" {
		t.Fatalf("unexpected span name %q", got)
	}
}

func TestDomainMetricsRegistered(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("", registry)
	if obs.SalesCommittedTotal == nil || obs.CartLines == nil || obs.StockReassignTotal == nil {
		t.Fatalf("expected domain collectors to be initialised")
	}
	obs.StockReassignTotal.WithLabelValues("ok").Inc()
	if got := testutil.ToFloat64(obs.StockReassignTotal.WithLabelValues("ok")); got < 1 {
		t.Fatalf("expected reassign counter to increase, got %v", got)
	}
}
