package browser

import (
	"time"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess          = "success"
	outcomeApplicationError = "application_error"
	outcomeTransportError   = "transport_error"
	outcomeDiscarded        = "discarded"
)

type Metrics struct {
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the file fetch metrics. A nil registry yields nil,
// which disables recording.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskview_file_fetches_total",
				Help: "Total number of file listing fetches by view mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskview_file_fetch_duration_seconds",
				Help:    "Duration of file listing fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(m.fetches, m.duration)
	return m
}

func (m *Metrics) observe(mode v1.ViewMode, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(string(mode), outcome).Inc()
	m.duration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
}
