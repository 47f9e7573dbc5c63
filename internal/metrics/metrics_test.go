package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncInstall("primary", "connected")
	m.IncInstall("primary", "connected")
	m.IncWebhook("primary", "orders/create", "created")
	m.IncFulfillment("failed")
	m.IncGDPR("")
	m.ObserveHTTP(http.MethodPost, "/shopify/fulfill", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.installs.WithLabelValues("primary", "connected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhooks.WithLabelValues("primary", "orders/create", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fulfillments.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gdpr.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/shopify/fulfill", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncInstall("a", "b")
		m.IncWebhook("a", "b", "c")
		m.IncFulfillment("x")
		m.IncGDPR("y")
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
}
