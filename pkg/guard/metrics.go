package guard

import "github.com/prometheus/client_golang/prometheus"

// Metrics records guard decisions in Prometheus.
type Metrics struct {
	decisions *prometheus.CounterVec
	wait      prometheus.Histogram
	timeouts  prometheus.Counter
}

// NewMetrics creates the guard collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lingua",
			Subsystem: "guard",
			Name:      "decisions_total",
			Help:      "Navigation guard decisions by outcome and reason.",
		}, []string{"outcome", "reason"}),
		wait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lingua",
			Subsystem: "guard",
			Name:      "wait_seconds",
			Help:      "Time spent in a guard check, including any wait for auth initialisation.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5},
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lingua",
			Subsystem: "guard",
			Name:      "ready_timeouts_total",
			Help:      "Checks that decided before auth initialisation completed.",
		}),
	}

	for _, c := range []prometheus.Collector{m.decisions, m.wait, m.timeouts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe implements Observer.
func (m *Metrics) Observe(d Decision) {
	m.decisions.WithLabelValues(string(d.Outcome), string(d.Reason)).Inc()
	m.wait.Observe(d.Waited.Seconds())
	if d.TimedOut {
		m.timeouts.Inc()
	}
}
