package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters for the order lifecycle.
type CheckoutMetrics struct {
	intentsCreated  prometheus.Counter
	ordersFinalized prometheus.Counter
	sinkFailures    *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	intents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_intents_created_total",
		Help: "Payment intents created with the processor.",
	})
	finalized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_finalized_total",
		Help: "Orders finalized after confirmed payment.",
	})
	sinkFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_sink_failures_total",
		Help: "Best-effort persistence sink failures by sink.",
	}, []string{"sink"})
	reg.MustRegister(intents, finalized, sinkFailures)
	return &CheckoutMetrics{
		intentsCreated:  intents,
		ordersFinalized: finalized,
		sinkFailures:    sinkFailures,
	}
}

// IncIntentCreated increments the payment intent counter.
func (m *CheckoutMetrics) IncIntentCreated() {
	if m == nil || m.intentsCreated == nil {
		return
	}
	m.intentsCreated.Inc()
}

// IncOrderFinalized increments the finalized order counter.
func (m *CheckoutMetrics) IncOrderFinalized() {
	if m == nil || m.ordersFinalized == nil {
		return
	}
	m.ordersFinalized.Inc()
}

// IncSinkFailure increments the failure counter for the named sink.
func (m *CheckoutMetrics) IncSinkFailure(sink string) {
	if m == nil || m.sinkFailures == nil {
		return
	}
	m.sinkFailures.WithLabelValues(normalizeLabel(sink)).Inc()
}

func normalizeLabel(value string) string {
	label := strings.TrimSpace(strings.ToLower(value))
	if label == "" {
		return "unknown"
	}
	return strings.ReplaceAll(label, " ", "_")
}
