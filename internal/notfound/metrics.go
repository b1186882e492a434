package notfound

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	probes      *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	comparisons *prometheus.CounterVec
	references  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soft404",
			Name:      "probes_total",
			Help:      "Synthetic not-found requests sent, by result.",
		}, []string{"result"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soft404",
			Name:      "decisions_total",
			Help:      "404 decisions, by verdict and deciding stage.",
		}, []string{"verdict", "stage"}),
		comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soft404",
			Name:      "comparisons_total",
			Help:      "Fuzzy body comparisons, by deciding stage.",
		}, []string{"stage"}),
		references: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "soft404",
			Name:      "references",
			Help:      "Reference responses currently cached.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.probes, m.decisions, m.comparisons, m.references)
	}
	return m
}

func (m *Metrics) probe(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.probes.WithLabelValues(result).Inc()
}

func (m *Metrics) decision(is404 bool, stage Stage) {
	if m == nil {
		return
	}
	verdict := "ok"
	if is404 {
		verdict = "404"
	}
	m.decisions.WithLabelValues(verdict, string(stage)).Inc()
}

func (m *Metrics) comparison(stage Stage) {
	if m == nil {
		return
	}
	m.comparisons.WithLabelValues(string(stage)).Inc()
}

func (m *Metrics) setReferences(n int64) {
	if m == nil {
		return
	}
	m.references.Set(float64(n))
}
