package restore

import "github.com/prometheus/client_golang/prometheus"

// Metrics is an optional set of counters/gauges describing one or
// more restore runs, additive observability spec.md itself has
// nothing to say about (its external-interfaces section lists only
// flash, codec, allocator, and hash-index collaborators) but which
// any embedded service running this mount path in production wants.
// A nil *Metrics disables instrumentation entirely, so unit tests that
// mount repeatedly never collide on duplicate registration.
type Metrics struct {
	AreasScanned     prometheus.Counter
	RecordsAccepted  prometheus.Counter
	RecordsRejected  prometheus.Counter
	DummiesCreated   prometheus.Counter
	DummiesSwept     prometheus.Gauge
	MountDuration    prometheus.Histogram
}

// NewMetrics builds a Metrics struct and registers it against reg. If
// reg is nil, the returned Metrics still counts, but its collectors
// are not registered anywhere, so nothing is exported.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AreasScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ffs_restore_areas_scanned_total",
			Help: "Number of flash areas scanned during restore.",
		}),
		RecordsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ffs_restore_records_accepted_total",
			Help: "Number of disk records merged into the restored graph.",
		}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ffs_restore_records_rejected_total",
			Help: "Number of disk records rejected as corrupt.",
		}),
		DummiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ffs_restore_dummies_created_total",
			Help: "Number of placeholder objects created for forward references.",
		}),
		DummiesSwept: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffs_restore_dummies_swept",
			Help: "Number of unresolved placeholder objects removed by the last sweep.",
		}),
		MountDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "ffs_restore_mount_duration_seconds",
			Help: "Wall-clock duration of a restore/mount pass.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.AreasScanned, m.RecordsAccepted, m.RecordsRejected,
			m.DummiesCreated, m.DummiesSwept, m.MountDuration)
	}
	return m
}

func (m *Metrics) areaScanned() {
	if m != nil {
		m.AreasScanned.Inc()
	}
}

func (m *Metrics) recordAccepted() {
	if m != nil {
		m.RecordsAccepted.Inc()
	}
}

func (m *Metrics) recordRejected() {
	if m != nil {
		m.RecordsRejected.Inc()
	}
}

func (m *Metrics) dummyCreated() {
	if m != nil {
		m.DummiesCreated.Inc()
	}
}

func (m *Metrics) setDummiesSwept(n int) {
	if m != nil {
		m.DummiesSwept.Set(float64(n))
	}
}
