package ratecache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts rate cache activity.
type Metrics struct {
	lookups *prometheus.CounterVec
	stores  prometheus.Counter
}

// NewMetrics creates the cache counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aws_rate_hook",
			Subsystem: "rate_cache",
			Name:      "lookups_total",
			Help:      "Rate cache lookups partitioned by result (hit or miss).",
		}, []string{"result"}),
		stores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aws_rate_hook",
			Subsystem: "rate_cache",
			Name:      "stores_total",
			Help:      "Hourly prices written to the rate cache.",
		}),
	}
	for _, c := range []prometheus.Collector{m.lookups, m.stores} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) hit() {
	if m != nil {
		m.lookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.lookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) store() {
	if m != nil {
		m.stores.Inc()
	}
}
