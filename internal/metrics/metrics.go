package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CheckoutMetrics struct {
	registry *prometheus.Registry

	OrdersCreated     prometheus.Counter
	OrdersCancelled   prometheus.Counter
	PaymentsInitiated *prometheus.CounterVec
	PaymentsVerified  *prometheus.CounterVec
}

func NewCheckoutMetrics() *CheckoutMetrics {
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookstore",
		Name:      "orders_created_total",
		Help:      "Orders successfully created at checkout.",
	})
	ordersCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookstore",
		Name:      "orders_cancelled_total",
		Help:      "Orders moved to cancelled.",
	})
	paymentsInitiated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Name:      "payments_initiated_total",
		Help:      "Payment redirects built, by provider.",
	}, []string{"provider"})
	paymentsVerified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Name:      "payments_verified_total",
		Help:      "Payment callbacks verified, by provider and result.",
	}, []string{"provider", "result"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(ordersCreated, ordersCancelled, paymentsInitiated, paymentsVerified)

	return &CheckoutMetrics{
		registry:          registry,
		OrdersCreated:     ordersCreated,
		OrdersCancelled:   ordersCancelled,
		PaymentsInitiated: paymentsInitiated,
		PaymentsVerified:  paymentsVerified,
	}
}

func (m *CheckoutMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
