package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PaymentMetrics struct {
	OrdersCreated     prometheus.Counter
	OrdersPaid        prometheus.Counter
	ReconcileRuns     prometheus.Counter
	ReconcileErrors   prometheus.Counter
	CallbackFailures  prometheus.Counter
	ReconcileDuration prometheus.Histogram
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	m := &PaymentMetrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usdtgate",
			Name:      "orders_created_total",
			Help:      "Total number of allocated orders.",
		}),
		OrdersPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usdtgate",
			Name:      "orders_paid_total",
			Help:      "Total number of orders transitioned to paid.",
		}),
		ReconcileRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usdtgate",
			Name:      "reconcile_runs_total",
			Help:      "Total number of reconciliation passes.",
		}),
		ReconcileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usdtgate",
			Name:      "reconcile_errors_total",
			Help:      "Total number of per-wallet reconciliation failures.",
		}),
		CallbackFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usdtgate",
			Name:      "callback_failures_total",
			Help:      "Total number of failed merchant callback deliveries.",
		}),
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "usdtgate",
			Name:      "reconcile_wallet_duration_seconds",
			Help:      "Per-wallet reconciliation latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	reg.MustRegister(
		m.OrdersCreated,
		m.OrdersPaid,
		m.ReconcileRuns,
		m.ReconcileErrors,
		m.CallbackFailures,
		m.ReconcileDuration,
	)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
