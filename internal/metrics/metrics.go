package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	appointmentCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkspiration",
			Name:      "appointment_created_total",
			Help:      "Count of appointments created by service type.",
		},
		[]string{"service_type"},
	)

	appointmentCanceled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inkspiration",
			Name:      "appointment_canceled_total",
			Help:      "Count of appointments canceled.",
		},
	)

	scheduleUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inkspiration",
			Name:      "schedule_updated_total",
			Help:      "Count of weekly schedule submissions.",
		},
	)

	availabilityQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkspiration",
			Name:      "availability_queries_total",
			Help:      "Count of availability queries by outcome.",
		},
		[]string{"outcome"},
	)

	availabilityDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inkspiration",
			Name:      "availability_query_duration_seconds",
			Help:      "Time to compute an availability query.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			appointmentCreated,
			appointmentCanceled,
			scheduleUpdated,
			availabilityQueries,
			availabilityDuration,
		)
	})
}

func IncAppointmentCreated(serviceType string) {
	appointmentCreated.WithLabelValues(serviceType).Inc()
}

func IncAppointmentCanceled() {
	appointmentCanceled.Inc()
}

func IncScheduleUpdated() {
	scheduleUpdated.Inc()
}

func IncAvailabilityQuery(outcome string) {
	availabilityQueries.WithLabelValues(outcome).Inc()
}

func ObserveAvailabilityDuration(seconds float64) {
	availabilityDuration.Observe(seconds)
}
