package tally

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Stats interface {
	// traffic
	IncConverted()
	IncComputed()

	// errors
	IncParseFailed()

	// latency
	ObserveConvertDuration(d time.Duration)
	ObserveComputeDuration(d time.Duration)

	// saturation
	SetSnapshotEntries(n int)
}

// NopStats discards every observation. It is the default reporter.
type NopStats struct{}

func (NopStats) IncConverted()                           {}
func (NopStats) IncComputed()                            {}
func (NopStats) IncParseFailed()                         {}
func (NopStats) ObserveConvertDuration(d time.Duration)  {}
func (NopStats) ObserveComputeDuration(d time.Duration)  {}
func (NopStats) SetSnapshotEntries(n int)                {}

type PrometheusStats struct {
	// traffic
	SnapshotsConverted prometheus.Counter
	TotalsComputed     prometheus.Counter

	// errors
	ParseFailed prometheus.Counter

	// latency
	ConvertDuration prometheus.Histogram
	ComputeDuration prometheus.Histogram

	// saturation
	SnapshotEntries prometheus.Gauge
}

func NewPrometheusStats(reg prometheus.Registerer) *PrometheusStats {
	m := &PrometheusStats{
		SnapshotsConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshots_converted_total",
			Help: "Total number of mappings converted into snapshots",
		}),
		TotalsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "totals_computed_total",
			Help: "Total number of element counts computed from snapshots",
		}),
		ParseFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parse_failed_total",
			Help: "Total number of series documents rejected by the parser",
		}),

		SnapshotEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "snapshot_entries",
			Help: "Entry count of the most recently converted snapshot",
		}),

		ConvertDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "convert_duration_seconds",
			Help:    "Time spent copying a mapping out under the source lock",
			Buckets: prometheus.DefBuckets,
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "compute_duration_seconds",
			Help:    "Time spent summing a snapshot with no lock held",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.SnapshotsConverted,
		m.TotalsComputed,
		m.ParseFailed,
		m.SnapshotEntries,
		m.ConvertDuration,
		m.ComputeDuration,
	)

	return m
}

func (m *PrometheusStats) IncConverted() {
	m.SnapshotsConverted.Inc()
}

func (m *PrometheusStats) IncComputed() {
	m.TotalsComputed.Inc()
}

func (m *PrometheusStats) IncParseFailed() {
	m.ParseFailed.Inc()
}

func (m *PrometheusStats) ObserveConvertDuration(d time.Duration) {
	m.ConvertDuration.Observe(d.Seconds())
}

func (m *PrometheusStats) ObserveComputeDuration(d time.Duration) {
	m.ComputeDuration.Observe(d.Seconds())
}

func (m *PrometheusStats) SetSnapshotEntries(n int) {
	m.SnapshotEntries.Set(float64(n))
}
