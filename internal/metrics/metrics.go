package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookdesk",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookdesk",
			Name:      "bookings_total",
			Help:      "Count of booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	emails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookdesk",
			Name:      "emails_total",
			Help:      "Count of notification emails by result.",
		},
		[]string{"result"},
	)

	scheduleRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookdesk",
			Name:      "schedule_refreshes_total",
			Help:      "Count of schedule config refreshes by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, emails, scheduleRefreshes)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

func IncEmail(result string) {
	emails.WithLabelValues(result).Inc()
}

func IncScheduleRefresh(result string) {
	scheduleRefreshes.WithLabelValues(result).Inc()
}
