package superbounds

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the cycle counters a CycleDriver reports into.
type Metrics struct {
	CyclesTotal    prometheus.Counter
	CycleDuration  prometheus.Histogram
	RayHits        prometheus.Histogram
	MatchesTotal   *prometheus.CounterVec
	TruncatedTotal prometheus.Counter
	BoundsGauge    prometheus.Gauge
	ResyncsTotal   prometheus.Counter
}

// NewMetrics registers the cycle metrics with reg. Pass prometheus.DefaultRegisterer to expose
// them through the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "superbounds_cycles_total",
			Help: "Query cycles harvested",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "superbounds_cycle_duration_seconds",
			Help:    "Time from BeginCycle until every job of the cycle finished",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10us to ~330ms
		}),
		RayHits: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "superbounds_ray_hits",
			Help:    "Boxes hit by the cycle's ray, before truncation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 500},
		}),
		MatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "superbounds_matches_total",
			Help: "Cycles where the query found a box, by query kind",
		}, []string{"kind"}),
		TruncatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "superbounds_hits_truncated_total",
			Help: "Cycles with more ray hits than the hit list could hold",
		}),
		BoundsGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "superbounds_bounds",
			Help: "Boxes in the query collection",
		}),
		ResyncsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "superbounds_resyncs_total",
			Help: "Collection generations swapped in between cycles",
		}),
	}
}

func (m *Metrics) observe(res CycleResult) {
	if m == nil {
		return
	}
	m.CyclesTotal.Inc()
	m.CycleDuration.Observe(res.Elapsed.Seconds())
	m.RayHits.Observe(float64(res.RayHitCount))
	if res.Point.Found {
		m.MatchesTotal.WithLabelValues(PointQuery.String()).Inc()
	}
	if res.Box.Found {
		m.MatchesTotal.WithLabelValues(BoxQuery.String()).Inc()
	}
	if len(res.RayHits) > 0 {
		m.MatchesTotal.WithLabelValues(RayQuery.String()).Inc()
	}
	if res.Truncated {
		m.TruncatedTotal.Inc()
	}
}
