package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Balance engine metrics
	EngineOps        *prometheus.CounterVec
	EngineOpErrors   *prometheus.CounterVec
	EngineOpDuration *prometheus.HistogramVec

	// Sheet lifecycle metrics
	SheetsCreated  *prometheus.CounterVec
	SheetsArchived prometheus.Counter
	SheetsDeleted  prometheus.Counter

	// Read path metrics
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	DriftDetected prometheus.Counter

	// Container metrics
	ContainersCreated prometheus.Counter
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates and registers all metrics with the given registerer.
// Tests pass a fresh registry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EngineOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetledger_engine_operations_total",
				Help: "Total completed balance engine operations",
			},
			[]string{"operation"},
		),
		EngineOpErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetledger_engine_operation_errors_total",
				Help: "Total failed balance engine operations",
			},
			[]string{"operation"},
		),
		EngineOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sheetledger_engine_operation_duration_seconds",
				Help:    "Duration of balance engine operations including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		SheetsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetledger_sheets_created_total",
				Help: "Total sheets created per book",
			},
			[]string{"book"},
		),
		SheetsArchived: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetledger_sheets_archived_total",
			Help: "Total sheets soft-deleted to ARCHIVED",
		}),
		SheetsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetledger_sheets_deleted_total",
			Help: "Total empty sheets hard-deleted",
		}),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetledger_summary_cache_hits_total",
			Help: "Sheet summaries served from cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetledger_summary_cache_misses_total",
			Help: "Sheet summaries recomputed from the database",
		}),
		DriftDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetledger_aggregate_drift_total",
			Help: "Sheets found with aggregates desynced from entries",
		}),

		ContainersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetledger_containers_created_total",
			Help: "Total container summaries recorded",
		}),
	}
}
