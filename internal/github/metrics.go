package github

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	lookups *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "github",
			Name:      "cache_lookups_total",
			Help:      "GitHub proxy cache lookups by outcome.",
		}, []string{"cache", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.lookups)
	}
	return m
}

func (m *Metrics) cacheLookup(cache string, result cacheResult) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(cache, string(result)).Inc()
}
