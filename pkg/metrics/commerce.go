package metrics

import "github.com/prometheus/client_golang/prometheus"

// CommerceMetrics counts order, payment and coupon outcomes.
type CommerceMetrics struct {
	orders   prometheus.Counter
	payments *prometheus.CounterVec
	coupons  *prometheus.CounterVec
}

func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted at checkout.",
	})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_confirmed_total",
		Help: "Payment confirmations by outcome.",
	}, []string{"result"})
	coupons := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_redemptions_total",
		Help: "Coupon redemptions by outcome.",
	}, []string{"result"})
	reg.MustRegister(orders, payments, coupons)
	return &CommerceMetrics{orders: orders, payments: payments, coupons: coupons}
}

func (c *CommerceMetrics) OrderCreated() {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.Inc()
}

func (c *CommerceMetrics) PaymentConfirmed(result string) {
	if c == nil || c.payments == nil {
		return
	}
	c.payments.WithLabelValues(normalizeLabel(result)).Inc()
}

func (c *CommerceMetrics) CouponRedeemed(result string) {
	if c == nil || c.coupons == nil {
		return
	}
	c.coupons.WithLabelValues(normalizeLabel(result)).Inc()
}
