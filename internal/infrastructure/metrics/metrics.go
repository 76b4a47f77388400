package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsRecorded *prometheus.CounterVec
	TransactionAmount    *prometheus.HistogramVec
	TransfersCompleted   prometheus.Counter
	PaymentsRegistered   *prometheus.CounterVec
	AllocationsApplied   *prometheus.CounterVec
	OperationErrors      *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
	UnitOfWorkRetries    prometheus.Counter

	// Account metrics
	AccountsCreated   *prometheus.CounterVec
	ReconciliationOff prometheus.Gauge

	// Statement cache metrics
	StatementCacheHits   prometheus.Counter
	StatementCacheMisses prometheus.Counter

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		TransactionsRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_transactions_recorded_total",
				Help: "Total number of ledger transactions recorded by type",
			},
			[]string{"type"},
		),
		TransactionAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cashbook_transaction_amount",
				Help:    "Recorded transaction amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		TransfersCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_transfers_completed_total",
			Help: "Total number of transfers between accounts",
		}),
		PaymentsRegistered: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_payments_registered_total",
				Help: "Total number of payments registered by direction",
			},
			[]string{"direction"},
		),
		AllocationsApplied: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_allocations_applied_total",
				Help: "Invoice allocations applied by resulting status",
			},
			[]string{"status"},
		),
		OperationErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_operation_errors_total",
				Help: "Rejected or failed operations by operation and error kind",
			},
			[]string{"operation", "kind"},
		),
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cashbook_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		UnitOfWorkRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_unit_of_work_retries_total",
			Help: "Units of work retried after a concurrency conflict",
		}),

		AccountsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_accounts_created_total",
				Help: "Total number of accounts created by kind",
			},
			[]string{"kind"},
		),
		ReconciliationOff: f.NewGauge(prometheus.GaugeOpts{
			Name: "cashbook_reconciliation_unbalanced_accounts",
			Help: "Accounts whose balance differs from their transaction history at the last check",
		}),

		StatementCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_statement_cache_hits_total",
			Help: "Statement cache hits",
		}),
		StatementCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_statement_cache_misses_total",
			Help: "Statement cache misses",
		}),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_events_published_total",
				Help: "Outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventsFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_events_failed_total",
				Help: "Outbox events that failed to publish by type",
			},
			[]string{"event_type"},
		),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cashbook_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "cashbook_db_connections",
			Help: "Current number of acquired database connections",
		}),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
