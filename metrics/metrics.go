package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the API.
type Metrics struct {
	TenantResolutions *prometheus.CounterVec
	RLSFailures       prometheus.Counter
	GuardDenials      *prometheus.CounterVec
	OrdersPlaced      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// Passing a fresh prometheus.NewRegistry() keeps tests independent.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TenantResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delli",
			Subsystem: "tenancy",
			Name:      "resolutions_total",
			Help:      "Tenant resolutions by result.",
		}, []string{"result"}), // result: ok, not_found, error, skipped
		RLSFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delli",
			Subsystem: "tenancy",
			Name:      "rls_failures_total",
			Help:      "Failed attempts to set the current team for row-level filtering.",
		}),
		GuardDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delli",
			Subsystem: "guard",
			Name:      "denials_total",
			Help:      "Role guard denials, split by whether a redirect was issued.",
		}, []string{"redirected"}),
		OrdersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delli",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders placed by order type.",
		}, []string{"type"}),
	}
	if reg != nil {
		reg.MustRegister(m.TenantResolutions, m.RLSFailures, m.GuardDenials, m.OrdersPlaced)
	}
	return m
}
