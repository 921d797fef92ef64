package observability

import (
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	enquiriesTotal  *prometheus.CounterVec
	uploadsTotal    *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		enquiriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_enquiries_total",
				Help: "Total enquiries submitted, by customer outcome.",
			},
			[]string{"customer"},
		),
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_uploads_total",
				Help: "Total image upload attempts, by outcome.",
			},
			[]string{"status"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_store_errors_total",
				Help: "Total persistence layer errors by collection.",
			},
			[]string{"collection"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrEnquiry counts an intake, labelled "new" or "existing" depending on
// whether the submission created a customer.
func (m *Metrics) IncrEnquiry(customer string) {
	m.enquiriesTotal.WithLabelValues(customer).Inc()
}

// IncrUpload counts an upload attempt, labelled "accepted" or "rejected".
func (m *Metrics) IncrUpload(status string) {
	m.uploadsTotal.WithLabelValues(status).Inc()
}

// IncrStoreError increments the persistence error counter.
func (m *Metrics) IncrStoreError(collection string) {
	m.storeErrors.WithLabelValues(collection).Inc()
}

// Snapshot returns the counter values served by GET /api/admin/stats.
func (m *Metrics) Snapshot() *domain.AdminStats {
	newCustomers := getCounterValue(m.enquiriesTotal, "new")
	existing := getCounterValue(m.enquiriesTotal, "existing")

	return &domain.AdminStats{
		EnquiriesTotal:    int64(newCustomers + existing),
		NewCustomers:      int64(newCustomers),
		ExistingCustomers: int64(existing),
		UploadsAccepted:   int64(getCounterValue(m.uploadsTotal, "accepted")),
		UploadsRejected:   int64(getCounterValue(m.uploadsTotal, "rejected")),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
