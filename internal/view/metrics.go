package view

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeStale    = "stale"
	outcomeRollback = "rollback"
	outcomeBusy     = "busy"
)

type Metrics struct {
	Loads *prometheus.CounterVec
	Likes *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_product_loads_total",
				Help: "Product list loads by view and outcome",
			},
			[]string{"view", "outcome"},
		),
		Likes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_likes_total",
				Help: "Like actions by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.Loads, m.Likes)
	return m
}

func (m *Metrics) load(view, outcome string) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(view, outcome).Inc()
}

func (m *Metrics) like(outcome string) {
	if m == nil {
		return
	}
	m.Likes.WithLabelValues(outcome).Inc()
}
