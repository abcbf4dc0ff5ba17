package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveFile(t *testing.T) {
	assert := assert.New(t)

	c, err := NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	c.ObserveFile("snx", 26, nil)
	c.ObserveFile("snx", 0, errors.New("no header"))
	c.ObserveFile("sitelog", 5, nil)

	assert.Equal(1.0, testutil.ToFloat64(c.Files.WithLabelValues("snx", "ok")))
	assert.Equal(1.0, testutil.ToFloat64(c.Files.WithLabelValues("snx", "error")))
	assert.Equal(26.0, testutil.ToFloat64(c.Records.WithLabelValues("snx")))
	assert.Equal(5.0, testutil.ToFloat64(c.Records.WithLabelValues("sitelog")))

	c.SetStations(3)
	assert.Equal(3.0, testutil.ToFloat64(c.Stations))
}

func TestCollector_register(t *testing.T) {
	reg := prometheus.NewRegistry()
	c1, err := NewCollector(reg)
	require.NoError(t, err)
	c2, err := NewCollector(reg)
	require.NoError(t, err, "registering twice reuses the collectors")

	c1.ObserveRequest("/healthz", http.StatusOK, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(c2.Requests.WithLabelValues("/healthz", "200")))
}

func TestCollector_nil(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveFile("ssc", 1, nil)
		c.SetStations(1)
		c.ObserveRequest("/", http.StatusOK, time.Second)
	})
}

func TestCollector_Handler(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	c.ObserveRequest("/api/v1/stations", http.StatusNotFound, 2*time.Millisecond)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `siteinfo_http_requests_total{code="404",route="/api/v1/stations"} 1`)
	assert.Contains(t, rr.Body.String(), "siteinfo_http_request_duration_seconds_count")
}
