package counter

import "github.com/prometheus/client_golang/prometheus"

// Metrics is safe to use as a nil pointer.
type Metrics struct {
	views       prometheus.Counter
	newVisitors prometheus.Counter
	fallbacks   *prometheus.CounterVec
}

// NewMetrics creates the counter metrics and registers them with reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		views: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "counter",
			Name:      "views_recorded_total",
			Help:      "Page views recorded.",
		}),
		newVisitors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "counter",
			Name:      "new_visitors_total",
			Help:      "Views that came from a visitor not seen before on that page.",
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "counter",
			Name:      "store_fallbacks_total",
			Help:      "Operations served from in-memory state because the durable store failed.",
		}, []string{"op", "store"}),
	}
	if reg != nil {
		reg.MustRegister(m.views, m.newVisitors, m.fallbacks)
	}
	return m
}

func (m *Metrics) recordView(newVisitor bool) {
	if m == nil {
		return
	}
	m.views.Inc()
	if newVisitor {
		m.newVisitors.Inc()
	}
}

func (m *Metrics) fallback(op, store string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(op, store).Inc()
}
