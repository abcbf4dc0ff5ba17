// Package metrics provides the Prometheus metrics of the siteinfo service.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the metrics for loading site information files and serving requests.
// A nil Collector discards all observations.
type Collector struct {
	gatherer prometheus.Gatherer

	Files    *prometheus.CounterVec
	Records  *prometheus.CounterVec
	Stations prometheus.Gauge

	Requests         *prometheus.CounterVec
	RequestDurations *prometheus.HistogramVec
}

// NewCollector registers the metrics against reg, defaulting to the global registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	files, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siteinfo_files_total",
		Help: "Number of loaded site information files, labeled by source and status.",
	}, []string{"source", "status"}), "siteinfo_files_total")
	if err != nil {
		return nil, err
	}

	records, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siteinfo_records_total",
		Help: "Number of decoded records, labeled by source.",
	}, []string{"source"}), "siteinfo_records_total")
	if err != nil {
		return nil, err
	}

	stations, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "siteinfo_stations",
		Help: "Number of stations in the catalog.",
	}), "siteinfo_stations")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siteinfo_http_requests_total",
		Help: "Number of handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"}), "siteinfo_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "siteinfo_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route"}), "siteinfo_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		Files:            files,
		Records:          records,
		Stations:         stations,
		Requests:         requests,
		RequestDurations: durations,
	}, nil
}

// ObserveFile counts a loaded file and its records.
func (c *Collector) ObserveFile(source string, records int, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Files.WithLabelValues(source, status).Inc()
	if records > 0 {
		c.Records.WithLabelValues(source).Add(float64(records))
	}
}

// SetStations sets the number of known stations.
func (c *Collector) SetStations(n int) {
	if c == nil {
		return
	}
	c.Stations.Set(float64(n))
}

// ObserveRequest records a handled HTTP request.
func (c *Collector) ObserveRequest(route string, code int, d time.Duration) {
	if c == nil {
		return
	}
	c.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.RequestDurations.WithLabelValues(route).Observe(d.Seconds())
}

// Handler exposes a /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
