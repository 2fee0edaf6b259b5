package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"price-registry/internal/application"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counters(t *testing.T) {
	m := New()
	m.ObservePriceUpdate(application.ResultOK)
	m.ObservePriceUpdate(application.ResultOK)
	m.ObservePriceUpdate(application.ResultUnauthorized)
	m.ObserveFreshnessCheck(true)
	m.ObservePublish("BTC", "ok")

	require.Equal(t, 2.0, testutil.ToFloat64(m.updates.WithLabelValues(application.ResultOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.updates.WithLabelValues(application.ResultUnauthorized)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.freshnessChecks.WithLabelValues("true")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.freshnessChecks.WithLabelValues("false")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("BTC", "ok")))
}

func TestPrometheus_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/prices", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `price_registry_http_requests_total{method="GET",route="/prices",status="200"} 1`))
	require.Contains(t, body, "price_registry_http_request_duration_seconds")
}
