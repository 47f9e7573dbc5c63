package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	installs     *prometheus.CounterVec
	webhooks     *prometheus.CounterVec
	fulfillments *prometheus.CounterVec
	gdpr         *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		installs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopify_oauth_installs_total",
			Help: "Install and callback outcomes by app.",
		}, []string{"app", "result"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopify_webhooks_total",
			Help: "Webhook deliveries by app, topic and outcome.",
		}, []string{"app", "topic", "result"}),
		fulfillments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopify_fulfillment_syncs_total",
			Help: "Fulfillment sync attempts by outcome.",
		}, []string{"result"}),
		gdpr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopify_gdpr_requests_total",
			Help: "Compliance webhooks received by kind.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.installs, m.webhooks, m.fulfillments, m.gdpr, m.httpRequests, m.httpDuration)
	}
	return m
}

func (m *Metrics) IncInstall(app, result string) {
	if m == nil {
		return
	}
	m.installs.WithLabelValues(normalizeLabel(app), result).Inc()
}

func (m *Metrics) IncWebhook(app, topic, result string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(app), normalizeLabel(topic), result).Inc()
}

func (m *Metrics) IncFulfillment(result string) {
	if m == nil {
		return
	}
	m.fulfillments.WithLabelValues(result).Inc()
}

func (m *Metrics) IncGDPR(kind string) {
	if m == nil {
		return
	}
	m.gdpr.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveHTTP records one served request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
