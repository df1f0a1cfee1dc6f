package audit

import "github.com/prometheus/client_golang/prometheus"

var (
	entriesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_recorded_total",
			Help: "Audit entries persisted, by action.",
		},
		[]string{"action"},
	)

	entriesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_entries_failed_total",
		Help: "Audit entries that could not be persisted.",
	})

	entriesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_entries_dropped_total",
		Help: "Audit entries dropped because the queue was full or closed.",
	})

	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "audit_queue_depth",
		Help: "Audit entries waiting for a worker.",
	})
)

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(entriesRecorded, entriesFailed, entriesDropped, queueDepth)
}
