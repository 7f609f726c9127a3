package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the OBS controller.
type Metrics struct {
	registry            *prometheus.Registry
	requestsTotal       prometheus.Counter
	savesTotal          prometheus.Counter
	saveFailuresTotal   prometheus.Counter
	retentionDeletes    prometheus.Counter
	retentionBytesFreed prometheus.Counter
	directoryBytes      prometheus.Gauge
	connected           prometheus.Gauge
	errorsTotal         prometheus.Counter
}

// New creates and registers Prometheus metrics for the controller.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "obs_requests_total",
		Help: "Total number of HTTP requests received",
	})
	savesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "obs_replay_saves_total",
		Help: "Total number of replay saves confirmed on disk",
	})
	saveFailuresTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "obs_replay_save_failures_total",
		Help: "Total number of replay saves that failed or timed out",
	})
	retentionDeletes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "obs_retention_deleted_files_total",
		Help: "Total number of video files deleted by retention enforcement",
	})
	retentionBytesFreed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "obs_retention_bytes_freed_total",
		Help: "Total bytes freed by retention enforcement",
	})
	directoryBytes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "obs_video_directory_bytes",
		Help: "Aggregate size of the managed video directory in bytes",
	})
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "obs_websocket_connected",
		Help: "1 if a control-plane session to OBS is open, 0 otherwise",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "obs_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		savesTotal,
		saveFailuresTotal,
		retentionDeletes,
		retentionBytesFreed,
		directoryBytes,
		connected,
		errorsTotal,
	)

	return &Metrics{
		registry:            registry,
		requestsTotal:       requestsTotal,
		savesTotal:          savesTotal,
		saveFailuresTotal:   saveFailuresTotal,
		retentionDeletes:    retentionDeletes,
		retentionBytesFreed: retentionBytesFreed,
		directoryBytes:      directoryBytes,
		connected:           connected,
		errorsTotal:         errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncSaves increments the confirmed replay saves counter.
func (m *Metrics) IncSaves() {
	m.savesTotal.Inc()
}

// IncSaveFailures increments the failed replay saves counter.
func (m *Metrics) IncSaveFailures() {
	m.saveFailuresTotal.Inc()
}

// AddRetentionDelete records one deleted file and the bytes it freed.
func (m *Metrics) AddRetentionDelete(bytes int64) {
	m.retentionDeletes.Inc()
	m.retentionBytesFreed.Add(float64(bytes))
}

// SetDirectoryBytes sets the video directory size gauge.
func (m *Metrics) SetDirectoryBytes(n int64) {
	m.directoryBytes.Set(float64(n))
}

// SetConnected sets the websocket connection gauge.
func (m *Metrics) SetConnected(connected bool) {
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values
// (e.g. directory size and connection state).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
