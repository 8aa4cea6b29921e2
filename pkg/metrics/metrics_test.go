package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCheckoutMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.OrdersPlaced.Inc()
	m.CartMutations.WithLabelValues("add").Add(2)
	m.OrderGrandTotal.Observe(3536.46)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.OrdersPlaced))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CartMutations.WithLabelValues("add")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewCheckoutMetrics_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCheckoutMetrics(nil)
		NewCheckoutMetrics(nil)
	})
}
