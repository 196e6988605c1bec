package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the trust graph.
type Metrics struct {
	RegistrationsActive  prometheus.Gauge
	CredentialsIssued    prometheus.Counter
	CredentialsRevoked   prometheus.Counter
	ProofsSubmitted      prometheus.Counter
	ProofsVerified       prometheus.Counter
	PoliciesSet          prometheus.Counter
	AccessChecks         *prometheus.CounterVec
	RequestLatencySecond *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "trustgraph_registrations_active",
			Help: "Current number of registered identities",
		}),
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustgraph_credentials_issued_total",
			Help: "Total credentials issued",
		}),
		CredentialsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustgraph_credentials_revoked_total",
			Help: "Total credentials revoked",
		}),
		ProofsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustgraph_proofs_submitted_total",
			Help: "Total proofs submitted",
		}),
		ProofsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustgraph_proofs_verified_total",
			Help: "Total proofs marked verified",
		}),
		PoliciesSet: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustgraph_policies_set_total",
			Help: "Total access policies stored or overwritten",
		}),
		AccessChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgraph_access_checks_total",
			Help: "Access check evaluations by outcome",
		}, []string{"outcome"}),
		RequestLatencySecond: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trustgraph_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
