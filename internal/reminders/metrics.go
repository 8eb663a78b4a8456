package reminders

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the reminder system.
type Metrics struct {
	RemindersSentTotal   *prometheus.CounterVec
	RemindersQueueSize   prometheus.Gauge
	ReminderSendDuration prometheus.Histogram
	RemindersCleanedUp   prometheus.Counter
	ReminderRetries      prometheus.Counter
}

// NewMetrics creates and registers reminder metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RemindersSentTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_sent_total",
				Help:      "Total number of appointment reminders sent",
			},
			[]string{"status", "reminder_type"},
		),
		RemindersQueueSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reminders_queue_size",
				Help:      "Current number of pending reminders",
			},
		),
		ReminderSendDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reminder_send_duration_seconds",
				Help:      "Time to deliver a reminder",
				Buckets:   []float64{.01, .05, .1, .5, 1, 2, 5},
			},
		),
		RemindersCleanedUp: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_cleaned_up_total",
				Help:      "Total number of reminders cleaned up",
			},
		),
		ReminderRetries: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminder_retries_total",
				Help:      "Total number of reminder retry attempts",
			},
		),
	}
}

// IncSent increments the sent counter for a status and type.
func (m *Metrics) IncSent(status string, reminderType ReminderType) {
	if m == nil {
		return
	}
	m.RemindersSentTotal.WithLabelValues(status, string(reminderType)).Inc()
}

// SetQueueSize records the current pending queue size.
func (m *Metrics) SetQueueSize(size int64) {
	if m == nil {
		return
	}
	m.RemindersQueueSize.Set(float64(size))
}

// ObserveSendDuration records the delivery latency in seconds.
func (m *Metrics) ObserveSendDuration(seconds float64) {
	if m == nil {
		return
	}
	m.ReminderSendDuration.Observe(seconds)
}

// IncCleanedUp adds to the cleanup counter.
func (m *Metrics) IncCleanedUp(count int64) {
	if m == nil {
		return
	}
	m.RemindersCleanedUp.Add(float64(count))
}

// IncRetries increments the retry counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.ReminderRetries.Inc()
}
