package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values for QueriesTotal
const (
	ResultSuccess          = "success"
	ResultTimeout          = "timeout"
	ResultBindFailed       = "bind_failed"
	ResultSendFailed       = "send_failed"
	ResultReceiveFailed    = "receive_failed"
	ResultShortResponse    = "short_response"
	ResultInvalidTimestamp = "invalid_timestamp"
)

// SNTPMetrics holds the metrics describing one query
type SNTPMetrics struct {
	QueriesTotal         *prometheus.CounterVec
	QueryDurationSeconds prometheus.Histogram
	ServerTimeSeconds    prometheus.Gauge
	LastSuccessTimestamp prometheus.Gauge
	RenderFailuresTotal  prometheus.Counter
	BuildInfo            *prometheus.GaugeVec
}

// NewSNTPMetricsWithConfig creates the query metrics under a custom namespace
func NewSNTPMetricsWithConfig(namespace string) *SNTPMetrics {
	return &SNTPMetrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "SNTP queries by outcome",
			},
			[]string{"result"},
		),
		QueryDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Time from sending the request to receiving the reply or giving up",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		ServerTimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "server_time_seconds",
				Help:      "Server transmit timestamp of the last successful query in Unix seconds",
			},
		),
		LastSuccessTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Local time of the last successful query in Unix seconds",
			},
		),
		RenderFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_failures_total",
				Help:      "Successful queries whose time could not be rendered with the requested format",
			},
		),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_info",
				Help:      "Build information",
			},
			[]string{"version", "goversion"},
		),
	}
}

// NewSNTPMetrics creates the query metrics under the "sntp" namespace
func NewSNTPMetrics() *SNTPMetrics {
	return NewSNTPMetricsWithConfig("sntp")
}

// RecordSuccess records a completed exchange and the server time it carried
func (m *SNTPMetrics) RecordSuccess(elapsed time.Duration, serverTime time.Time, now time.Time) {
	m.QueriesTotal.WithLabelValues(ResultSuccess).Inc()
	m.QueryDurationSeconds.Observe(elapsed.Seconds())
	m.ServerTimeSeconds.Set(float64(serverTime.Unix()))
	m.LastSuccessTimestamp.Set(float64(now.Unix()))
}

// RecordFailure records a failed exchange
func (m *SNTPMetrics) RecordFailure(result string, elapsed time.Duration) {
	m.QueriesTotal.WithLabelValues(result).Inc()
	m.QueryDurationSeconds.Observe(elapsed.Seconds())
}

// RecordRenderFailure records a time that could not be formatted
func (m *SNTPMetrics) RecordRenderFailure() {
	m.RenderFailuresTotal.Inc()
}

func (m *SNTPMetrics) getAllMetrics() []prometheus.Collector {
	return []prometheus.Collector{
		m.QueriesTotal,
		m.QueryDurationSeconds,
		m.ServerTimeSeconds,
		m.LastSuccessTimestamp,
		m.RenderFailuresTotal,
		m.BuildInfo,
	}
}

// Describe implements prometheus.Collector interface
func (m *SNTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, metric := range m.getAllMetrics() {
		metric.Describe(ch)
	}
}

// Collect implements prometheus.Collector interface
func (m *SNTPMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, metric := range m.getAllMetrics() {
		metric.Collect(ch)
	}
}
