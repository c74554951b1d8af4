package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SalesCommittedTotal counts committed sales by document type and currency.
	SalesCommittedTotal *prometheus.CounterVec
	// CartLines reports the number of lines currently in the POS cart.
	CartLines prometheus.Gauge
	// StockReassignTotal counts warehouse reassignments by outcome.
	StockReassignTotal *prometheus.CounterVec
	// EventsPublishedTotal counts domain event publications by topic and outcome.
	EventsPublishedTotal *prometheus.CounterVec
	// WorkerTasksTotal counts worker task executions by task type and outcome.
	WorkerTasksTotal *prometheus.CounterVec
	// BreakerState reports the circuit breaker state per target: 0=closed, 1=open, 2=half-open.
	BreakerState *prometheus.GaugeVec
	// BreakerTransitionsTotal counts breaker state changes.
	BreakerTransitionsTotal *prometheus.CounterVec
	// DBQueryDuration records Postgres statement latency by operation.
	DBQueryDuration *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SalesCommittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pos_sales_committed_total",
			Help:      "Count of sales committed from the POS cart.",
		}, []string{"document_type", "currency"})
		CartLines = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pos_cart_lines",
			Help:      "Number of lines in the POS cart.",
		})
		StockReassignTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_reassign_total",
			Help:      "Count of product warehouse reassignments by outcome.",
		}, []string{"result"})
		EventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Count of domain events handed to the publisher by outcome.",
		}, []string{"topic", "result"})
		WorkerTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_tasks_total",
			Help:      "Count of worker task executions by outcome.",
		}, []string{"task", "result"})
		BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Current breaker state: 0=closed, 1=open, 2=half-open.",
		}, []string{"target"})
		BreakerTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_transitions_total",
			Help:      "Count of breaker state transitions.",
		}, []string{"target", "from", "to"})
		DBQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_ms",
			Help:      "Postgres statement latency in milliseconds.",
			Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"operation", "result"})

		SalesCommittedTotal = register(reg, SalesCommittedTotal)
		CartLines = register(reg, CartLines)
		StockReassignTotal = register(reg, StockReassignTotal)
		EventsPublishedTotal = register(reg, EventsPublishedTotal)
		WorkerTasksTotal = register(reg, WorkerTasksTotal)
		BreakerState = register(reg, BreakerState)
		BreakerTransitionsTotal = register(reg, BreakerTransitionsTotal)
		DBQueryDuration = register(reg, DBQueryDuration)
	})
}
