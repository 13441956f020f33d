package metrics

import "github.com/prometheus/client_golang/prometheus"

// CartMetrics counts cart mutations and persistence failures.
type CartMetrics struct {
	operations   *prometheus.CounterVec
	saveFailures prometheus.Counter
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart mutations by operation.",
	}, []string{"operation"})
	saveFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_save_failures_total",
		Help: "Cart persistence writes that failed and were swallowed.",
	})
	reg.MustRegister(operations, saveFailures)
	return &CartMetrics{
		operations:   operations,
		saveFailures: saveFailures,
	}
}

// IncOperation counts one cart mutation by name (add, update, remove, clear).
func (c *CartMetrics) IncOperation(operation string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncSaveFailure counts one swallowed persistence failure.
func (c *CartMetrics) IncSaveFailure() {
	if c == nil || c.saveFailures == nil {
		return
	}
	c.saveFailures.Inc()
}
