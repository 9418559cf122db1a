package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "fifa_tournament"

// Metrics holds the counters the tournament service updates.
type Metrics struct {
	ResultsRecorded prometheus.Counter
	ResultsRejected *prometheus.CounterVec
	SnapshotLoads   *prometheus.CounterVec
	SnapshotSaves   prometheus.Histogram
	StandingsCache  *prometheus.CounterVec
}

// NewMetrics registers the service metrics with reg. A nil reg leaves them
// unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ResultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "results_recorded_total",
			Help:      "Match results written to the snapshot store.",
		}),
		ResultsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "results_rejected_total",
			Help:      "Result edits refused, by reason.",
		}, []string{"reason"}),
		SnapshotLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "snapshot_loads_total",
			Help:      "Snapshot loads from the store, by outcome.",
		}, []string{"outcome"}),
		SnapshotSaves: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "snapshot_save_duration_seconds",
			Help:      "Time spent saving the snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		StandingsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "standings_cache_total",
			Help:      "Standings lookups by result: hit, miss or stored.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.ResultsRecorded, m.ResultsRejected, m.SnapshotLoads, m.SnapshotSaves, m.StandingsCache)
	}
	return m
}
