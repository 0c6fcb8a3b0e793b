package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TenantResolutions.WithLabelValues("ok").Inc()
	m.OrdersPlaced.WithLabelValues("pickup").Add(2)
	m.RLSFailures.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TenantResolutions.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersPlaced.WithLabelValues("pickup")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["delli_tenancy_resolutions_total"])
	assert.True(t, names["delli_tenancy_rls_failures_total"])
	assert.True(t, names["delli_orders_placed_total"])
}

func TestNew_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() { New(nil) })
}
