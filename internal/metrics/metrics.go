package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "visit_service"

var (
	once sync.Once

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_transitions_total",
			Help:      "Applied request status changes by action and resulting status.",
		},
		[]string{"action", "status"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Trip bookings by leg and initiator.",
		},
		[]string{"leg", "initiator"},
	)

	conflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_write_conflicts_total",
			Help:      "Request writes rejected because the version moved.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by gateway and result.",
		},
		[]string{"gateway", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(transitions, bookings, conflicts, notifications)
	})
}

func IncTransition(action, status string) {
	transitions.WithLabelValues(action, status).Inc()
}

func IncBooking(leg, initiator string) {
	bookings.WithLabelValues(leg, initiator).Inc()
}

func IncConflict() {
	conflicts.Inc()
}

// IncNotification records one delivery attempt; ok=false counts a failure.
func IncNotification(gateway string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	notifications.WithLabelValues(gateway, result).Inc()
}
