package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess          = "success"
	outcomeApplicationError = "application_error"
	outcomeTransportError   = "transport_error"
	outcomeDiscarded        = "discarded"
)

type Metrics struct {
	refreshes *prometheus.CounterVec
	sends     *prometheus.CounterVec
}

// NewMetrics registers the conversation metrics. A nil registry yields nil,
// which disables recording.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskview_message_refreshes_total",
				Help: "Total number of message list refreshes by outcome",
			},
			[]string{"outcome"},
		),
		sends: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskview_message_sends_total",
				Help: "Total number of messages sent by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}

	registry.MustRegister(m.refreshes, m.sends)
	return m
}

func (m *Metrics) refreshed(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) sent(kind, outcome string) {
	if m == nil {
		return
	}
	m.sends.WithLabelValues(kind, outcome).Inc()
}
