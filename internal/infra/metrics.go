package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricStreamURLsIssued = "media_stream_urls_issued_total"
	MetricStreamRejected   = "media_stream_rejected_total"
	MetricViewsRecorded    = "media_views_recorded_total"
	MetricReportDuration   = "media_analytics_report_duration_seconds"
)

// Metrics implements ports.MediaMetrics on Prometheus collectors.
// Collectors are not registered until Register is called.
type Metrics struct {
	urlsIssued     prometheus.Counter
	streamRejected *prometheus.CounterVec
	viewsRecorded  prometheus.Counter
	reportDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		urlsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricStreamURLsIssued,
			Help: "Total number of signed stream URLs issued",
		}),
		streamRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricStreamRejected,
			Help: "Total number of stream requests rejected by the URL validator",
		}, []string{"reason"}),
		viewsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricViewsRecorded,
			Help: "Total number of view events appended to the log",
		}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricReportDuration,
			Help:    "Analytics report computation time in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		}, []string{"range"}),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.urlsIssued,
		m.streamRejected,
		m.viewsRecorded,
		m.reportDuration,
	}
}

func (m *Metrics) StreamURLIssued() {
	m.urlsIssued.Inc()
}

func (m *Metrics) StreamRejected(reason string) {
	m.streamRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ViewRecorded() {
	m.viewsRecorded.Inc()
}

func (m *Metrics) ReportComputed(rangeName string, took time.Duration) {
	m.reportDuration.WithLabelValues(rangeName).Observe(took.Seconds())
}
