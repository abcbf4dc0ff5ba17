package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-bkg/siteinfo/internal/catalog"
	"github.com/de-bkg/siteinfo/internal/config"
	"github.com/de-bkg/siteinfo/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *metrics.Collector) {
	t.Helper()

	m, err := metrics.NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	cat := catalog.New(m)
	err = cat.Load(context.Background(), []string{
		"../../pkg/sinex/testdata/example.snx",
		"../../pkg/sitelog/testdata/wtzr00deu_20200610.log",
	}, 2)
	require.NoError(t, err)

	srv := New(config.ServiceConfig{HTTPAddr: ":0", ReadTimeout: time.Second}, cat, m)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, m
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestServer_health(t *testing.T) {
	ts, m := newTestServer(t)

	var body map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 2.0, body["datasets"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET /healthz", "200")))
}

func TestServer_stations(t *testing.T) {
	ts, _ := newTestServer(t)

	var body struct {
		Stations []string
		Datasets []catalog.Dataset
	}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/stations", &body))
	assert.Equal(t, []string{"abmf", "wtzr"}, body.Stations)
	require.Len(t, body.Datasets, 2)
	assert.Equal(t, "snx", string(body.Datasets[0].Source))
}

func TestServer_station(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantRecv   string
	}{
		{name: "latest", path: "/api/v1/stations/WTZR", wantStatus: http.StatusOK, wantRecv: "LEICA GR50"},
		{name: "date", path: "/api/v1/stations/wtzr?date=2012-01-01", wantStatus: http.StatusOK, wantRecv: "LEICA GR25"},
		{name: "datetime", path: "/api/v1/stations/wtzr00deu?date=2018-05-30T10:00:00Z", wantStatus: http.StatusOK, wantRecv: "LEICA GR50"},
		{name: "invalid date", path: "/api/v1/stations/wtzr?date=30.05.2018", wantStatus: http.StatusBadRequest},
		{name: "unknown station", path: "/api/v1/stations/brux", wantStatus: http.StatusNotFound},
	}

	ts, _ := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			require.Equal(t, tt.wantStatus, getJSON(t, ts.URL+tt.path, &body))
			if tt.wantStatus != http.StatusOK {
				assert.NotEmpty(t, body["error"])
				return
			}
			assert.Equal(t, "wtzr", body["station"])
			recv, ok := body["receiver"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.wantRecv, recv["type"])
		})
	}
}

func TestServer_history(t *testing.T) {
	ts, _ := newTestServer(t)

	var body struct {
		Station   string
		Receivers struct {
			Station string
			Entries []struct {
				Type       string
				SourcePath string
			}
		}
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/stations/wtzr/history", &body))
	assert.Equal(t, "wtzr", body.Station)
	require.Len(t, body.Receivers.Entries, 2)
	assert.Equal(t, "LEICA GR25", body.Receivers.Entries[0].Type)
	assert.Equal(t, "../../pkg/sinex/testdata/example.snx", body.Receivers.Entries[0].SourcePath)

	var errBody map[string]any
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/v1/stations/brux/history", &errBody))
}

func TestServer_metrics(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Run(t *testing.T) {
	srv := New(config.ServiceConfig{HTTPAddr: "127.0.0.1:0", ReadTimeout: time.Second}, catalog.New(nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "2020-06-10", want: time.Date(2020, 6, 10, 0, 0, 0, 0, time.UTC)},
		{in: "2020-06-10T12:30:00Z", want: time.Date(2020, 6, 10, 12, 30, 0, 0, time.UTC)},
		{in: "2020-06-10T14:30:00+02:00", want: time.Date(2020, 6, 10, 12, 30, 0, 0, time.UTC)},
		{in: "10.06.2020", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}
