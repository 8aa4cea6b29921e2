package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics are the counters the cart service reports.
type CheckoutMetrics struct {
	CartMutations       *prometheus.CounterVec
	OrdersPlaced        prometheus.Counter
	CheckoutRejected    *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec
	OrderGrandTotal     prometheus.Histogram
}

// NewCheckoutMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests want.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	m := &CheckoutMetrics{
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcart",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Accepted cart mutations by operation.",
		}, []string{"op"}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopcart",
			Subsystem: "checkout",
			Name:      "orders_placed_total",
			Help:      "Orders recorded in the ledger.",
		}),
		CheckoutRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcart",
			Subsystem: "checkout",
			Name:      "rejected_total",
			Help:      "Checkouts rejected before commit, by reason.",
		}, []string{"reason"}),
		PersistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcart",
			Subsystem: "storage",
			Name:      "failures_total",
			Help:      "Snapshot read/write failures by store and operation.",
		}, []string{"store", "op"}),
		OrderGrandTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shopcart",
			Subsystem: "checkout",
			Name:      "order_grand_total",
			Help:      "Grand total of placed orders, tax and shipping included.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 25000},
		}),
	}

	if reg != nil {
		reg.MustRegister(m.CartMutations, m.OrdersPlaced, m.CheckoutRejected, m.PersistenceFailures, m.OrderGrandTotal)
	}
	return m
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor serves a specific gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
