package metrics

import (
	"net/http"
	"strconv"
	"time"

	"price-registry/internal/application"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements application.Metrics on its own registry.
type Prometheus struct {
	registry        *prometheus.Registry
	updates         *prometheus.CounterVec
	freshnessChecks *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	published       *prometheus.CounterVec
}

var _ application.Metrics = (*Prometheus)(nil)

func New() *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "price_registry",
			Name:      "updates_total",
			Help:      "SetPrice calls by result.",
		}, []string{"result"}),
		freshnessChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "price_registry",
			Name:      "freshness_checks_total",
			Help:      "IsFresh calls by outcome.",
		}, []string{"fresh"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "price_registry",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "price_registry",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "price_registry",
			Subsystem: "publisher",
			Name:      "publish_total",
			Help:      "Publisher submissions by symbol and result.",
		}, []string{"symbol", "result"}),
	}
	m.registry.MustRegister(
		m.updates,
		m.freshnessChecks,
		m.httpRequests,
		m.httpDuration,
		m.published,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Prometheus) ObservePriceUpdate(result string) {
	m.updates.WithLabelValues(result).Inc()
}

func (m *Prometheus) ObserveFreshnessCheck(fresh bool) {
	m.freshnessChecks.WithLabelValues(strconv.FormatBool(fresh)).Inc()
}

func (m *Prometheus) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Prometheus) ObservePublish(symbol, result string) {
	m.published.WithLabelValues(symbol, result).Inc()
}

func (m *Prometheus) Registry() *prometheus.Registry { return m.registry }

// Handler exposes the private registry in the Prometheus text format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
