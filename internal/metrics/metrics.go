package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "itscare",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "itscare",
			Name:      "bookings_created_total",
			Help:      "Bookings registered manually.",
		},
	)

	importRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "itscare",
			Name:      "import_rows_accepted_total",
			Help:      "CSV import rows accepted into the ledger.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, importRows)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts a manual registration.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// AddImportRows counts rows accepted by a CSV import.
func AddImportRows(n int) {
	importRows.Add(float64(n))
}
