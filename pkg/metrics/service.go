package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics tracks the front-of-house counters exposed on /metrics.
type ServiceMetrics struct {
	ordersPlaced    *prometheus.CounterVec
	ordersCancelled prometheus.Counter
	paymentsSettled *prometheus.CounterVec
	stockRejections prometheus.Counter
}

// NewServiceMetrics registers the domain counters on the provided registerer.
func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	if reg == nil {
		return &ServiceMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed, labelled by order type.",
	}, []string{"order_type"})
	ordersCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled before settlement.",
	})
	paymentsSettled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_settled_total",
		Help: "Settled payments, labelled by payment method.",
	}, []string{"method"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_rejections_total",
		Help: "Order placements rejected for insufficient stock.",
	})
	reg.MustRegister(ordersPlaced, ordersCancelled, paymentsSettled, stockRejections)
	return &ServiceMetrics{
		ordersPlaced:    ordersPlaced,
		ordersCancelled: ordersCancelled,
		paymentsSettled: paymentsSettled,
		stockRejections: stockRejections,
	}
}

// IncOrderPlaced counts a successful placement for the given order type.
func (m *ServiceMetrics) IncOrderPlaced(orderType string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(orderType)).Inc()
}

// IncOrderCancelled counts a cancellation.
func (m *ServiceMetrics) IncOrderCancelled() {
	if m == nil || m.ordersCancelled == nil {
		return
	}
	m.ordersCancelled.Inc()
}

// IncPaymentSettled counts a settlement for the given method.
func (m *ServiceMetrics) IncPaymentSettled(method string) {
	if m == nil || m.paymentsSettled == nil {
		return
	}
	m.paymentsSettled.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncStockRejection counts a placement rejected by the stock ledger.
func (m *ServiceMetrics) IncStockRejection() {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.Inc()
}
