// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "linkdesk"

type Metrics struct {
	MutationsTotal          *prometheus.CounterVec
	MutationDurationSeconds *prometheus.HistogramVec
	RowBusyTotal            *prometheus.CounterVec

	QualificationsTotal *prometheus.CounterVec

	DataForSEORequestsTotal *prometheus.CounterVec
	DataForSEOCacheTotal    *prometheus.CounterVec

	DraftPersistsTotal *prometheus.CounterVec
	ExportsTotal       *prometheus.CounterVec
}

// New registers every collector on reg, or on the default registerer when reg
// is nil. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "mutations_total",
			Help:      "Review mutations by operation and outcome",
		}, []string{"operation", "outcome"}),
		MutationDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "mutation_duration_seconds",
			Help:      "Duration of review mutations including the refetch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		RowBusyTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "row_busy_total",
			Help:      "Mutations refused because the row already had one in flight",
		}, []string{"operation"}),
		QualificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bulk_analysis",
			Name:      "qualifications_total",
			Help:      "Domain qualification changes by source and resulting status",
		}, []string{"source", "status"}),
		DataForSEORequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataforseo",
			Name:      "requests_total",
			Help:      "Ranked keyword requests sent to DataForSEO",
		}, []string{"outcome"}),
		DataForSEOCacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataforseo",
			Name:      "cache_lookups_total",
			Help:      "Ranked keyword cache lookups",
		}, []string{"result"}),
		DraftPersistsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drafts",
			Name:      "persists_total",
			Help:      "Draft payloads written to the database",
		}, []string{"mode", "outcome"}),
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "exports_total",
			Help:      "Review workbook exports",
		}, []string{"outcome"}),
	}
}

// Outcome labels an error as "success" or "error".
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) ObserveMutation(operation string, start time.Time, err error) {
	m.MutationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	m.MutationDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
