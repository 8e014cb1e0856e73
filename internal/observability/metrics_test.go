package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func serveWithRoute(metrics *Metrics, route string, status int) {
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, route)

	req := httptest.NewRequest(http.MethodGet, route, nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func scrape(metrics *Metrics) string {
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rr.Body.String()
}

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	serveWithRoute(metrics, "/healthz", http.StatusOK)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metrics.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "hrs_http_requests_total") {
		t.Fatalf("expected body to contain hrs_http_requests_total, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()
	serveWithRoute(metrics, "/test", http.StatusTeapot)

	body := scrape(metrics)
	if !strings.Contains(body, "hrs_http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "hrs_http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestMetricsMiddlewareCountsAuthFailures(t *testing.T) {
	metrics := NewMetrics()
	serveWithRoute(metrics, "/api/roles", http.StatusUnauthorized)
	serveWithRoute(metrics, "/api/roles", http.StatusForbidden)
	serveWithRoute(metrics, "/api/roles", http.StatusForbidden)

	body := scrape(metrics)
	if !strings.Contains(body, "hrs_auth_failures_total{kind=\"unauthorized\"} 1") {
		t.Fatalf("expected unauthorized counter, got: %s", body)
	}
	if !strings.Contains(body, "hrs_auth_failures_total{kind=\"forbidden\"} 2") {
		t.Fatalf("expected forbidden counter, got: %s", body)
	}
}

func TestNilMetricsSafeDefaults(t *testing.T) {
	var metrics *Metrics

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rr := httptest.NewRecorder()
	metrics.Middleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("middleware should pass through, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil handler should answer 503, got %d", rr.Code)
	}
}
