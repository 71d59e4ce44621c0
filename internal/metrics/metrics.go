// Package metrics registers the Prometheus instruments for gate activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SubmissionsCreated prometheus.Counter
	SubmissionsUpdated prometheus.Counter
	Checkouts          prometheus.Counter
	Purges             prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SubmissionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "solaris_submissions_created_total",
			Help: "Check-ins that inserted a fresh registration",
		}),
		SubmissionsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "solaris_submissions_updated_total",
			Help: "Check-ins that reopened an existing registration",
		}),
		Checkouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "solaris_checkouts_total",
			Help: "Departure stamps recorded",
		}),
		Purges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "solaris_purges_total",
			Help: "Registrations deleted by the administrative purge",
		}),
	}
}
