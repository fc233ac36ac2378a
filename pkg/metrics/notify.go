package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotifyPublisherMetrics tracks the notification event publisher loop.
type NotifyPublisherMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	backlog   prometheus.Gauge
}

// NewNotifyPublisherMetrics registers the publisher metrics on the provided registerer.
func NewNotifyPublisherMetrics(reg prometheus.Registerer) *NotifyPublisherMetrics {
	if reg == nil {
		return &NotifyPublisherMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_events_published",
		Help: "Notification events successfully published to Pub/Sub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_events_failed",
		Help: "Notification event publish attempts that failed.",
	}, []string{"event_type"})
	backlog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notify_events_backlog",
		Help: "Unpublished notification events observed on the last poll.",
	})
	reg.MustRegister(published, failed, backlog)
	return &NotifyPublisherMetrics{
		published: published,
		failed:    failed,
		backlog:   backlog,
	}
}

// IncPublished increments the published counter for the event type.
func (m *NotifyPublisherMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter for the event type.
func (m *NotifyPublisherMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// SetBacklog records the pending event count from the latest poll.
func (m *NotifyPublisherMetrics) SetBacklog(n int) {
	if m == nil || m.backlog == nil {
		return
	}
	m.backlog.Set(float64(n))
}
