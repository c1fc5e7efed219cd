package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	UsersRegistered       prometheus.Counter
	Logins                prometheus.Counter
	ResidentsCreated      prometheus.Counter
	CertificatesRequested prometheus.Counter
	CertificatesCompleted prometheus.Counter
	RequestDuration       *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg. Tests pass a fresh
// registry; main passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "bims_users_registered_total",
			Help: "Total number of user accounts registered",
		}),
		Logins: factory.NewCounter(prometheus.CounterOpts{
			Name: "bims_logins_total",
			Help: "Total number of successful logins",
		}),
		ResidentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bims_residents_created_total",
			Help: "Total number of resident records created",
		}),
		CertificatesRequested: factory.NewCounter(prometheus.CounterOpts{
			Name: "bims_certificates_requested_total",
			Help: "Total number of certificate requests submitted",
		}),
		CertificatesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "bims_certificates_completed_total",
			Help: "Total number of certificate requests marked completed",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bims_http_request_duration_ms",
			Help:    "Latency of HTTP requests in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"route", "method"}),
	}
}
