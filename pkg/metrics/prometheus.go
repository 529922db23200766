// Package metrics provides Prometheus metrics for behavmetrix analysis runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run statuses.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusCanceled = "canceled"
)

// Manager manages all Prometheus metrics for analysis runs.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Analysis Metrics
	runs             *prometheus.CounterVec
	analysisLatency  prometheus.Histogram
	eventsProcessed  prometheus.Counter
	eventsSkipped    prometheus.Counter
	recordsDuplicate prometheus.Counter
	recordsDropped   prometheus.Counter
	alerts           *prometheus.CounterVec
	individuals      *prometheus.GaugeVec
	unstable         *prometheus.GaugeVec

	// Source Metrics
	sourceLoadLatency prometheus.Histogram
	sourceErrors      prometheus.Counter

	// Queue Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager and its registry with one built
// from opts. It must be called before any metric is recorded.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "behavmetrix",
		subsystem:        "analysis",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of analysis passes by status",
		ConstLabels: labels,
	}, []string{"status"})

	m.analysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "latency_milliseconds",
		Help:        "Histogram of full analysis pass latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.eventsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_processed_total",
		Help:        "Total number of dyadic events that updated ratings",
		ConstLabels: labels,
	})

	m.eventsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_skipped_total",
		Help:        "Total number of events outside the dominance vocabulary or self-directed",
		ConstLabels: labels,
	})

	m.recordsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_duplicate_total",
		Help:        "Total number of duplicate log records dropped (indicates data quality)",
		ConstLabels: labels,
	})

	m.recordsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_dropped_total",
		Help:        "Total number of log records dropped for a missing actor",
		ConstLabels: labels,
	})

	m.alerts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "alerts_total",
		Help:        "Total number of alerts raised by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.individuals = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "individuals",
		Help:        "Number of individuals in the last hierarchy per colony",
		ConstLabels: labels,
	}, []string{"colony"})

	m.unstable = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "unstable_individuals",
		Help:        "Number of individuals flagged unstable in the last pass per colony",
		ConstLabels: labels,
	}, []string{"colony"})

	m.sourceLoadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "source_load_latency_milliseconds",
		Help:        "Snapshot load latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.sourceErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "source_errors_total",
		Help:        "Total number of snapshot load errors",
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_size",
		Help:        "Current size of the job queue (backlog indicator)",
		ConstLabels: labels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_capacity",
		Help:        "Maximum job queue capacity",
		ConstLabels: labels,
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_enqueue_total",
		Help:        "Total number of jobs enqueued",
		ConstLabels: labels,
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_dequeue_total",
		Help:        "Total number of jobs dequeued",
		ConstLabels: labels,
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_enqueue_errors_total",
		Help:        "Total number of rejected enqueues",
		ConstLabels: labels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_count",
		Help:        "Current number of workers (processing capacity)",
		ConstLabels: labels,
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_active_count",
		Help:        "Number of workers currently running an analysis",
		ConstLabels: labels,
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_processing_latency_milliseconds",
		Help:        "Worker job latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_errors_total",
		Help:        "Total number of failed worker jobs",
		ConstLabels: labels,
	})
}

// RecordRun counts one analysis pass with its status and latency.
func (m *Manager) RecordRun(status string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.analysisLatency.Observe(latencyMs)
}

// RecordEvents adds the processed and skipped event counts of one pass.
func (m *Manager) RecordEvents(processed, skipped int) {
	if !m.enabled {
		return
	}
	m.eventsProcessed.Add(float64(processed))
	m.eventsSkipped.Add(float64(skipped))
}

// RecordRecords adds the duplicate and dropped record counts of one pass.
func (m *Manager) RecordRecords(duplicates, dropped int) {
	if !m.enabled {
		return
	}
	m.recordsDuplicate.Add(float64(duplicates))
	m.recordsDropped.Add(float64(dropped))
}

// RecordAlerts adds n alerts of kind.
func (m *Manager) RecordAlerts(kind string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.alerts.WithLabelValues(kind).Add(float64(n))
}

// UpdateColony sets the hierarchy size and unstable count of a colony.
func (m *Manager) UpdateColony(colony string, individuals, unstable int) {
	if !m.enabled {
		return
	}
	m.individuals.WithLabelValues(colony).Set(float64(individuals))
	m.unstable.WithLabelValues(colony).Set(float64(unstable))
}

// RecordSourceLoad records a snapshot load and whether it failed.
func (m *Manager) RecordSourceLoad(latencyMs float64, failed bool) {
	if !m.enabled {
		return
	}
	m.sourceLoadLatency.Observe(latencyMs)
	if failed {
		m.sourceErrors.Inc()
	}
}

// UpdateQueue sets the current queue size and capacity.
func (m *Manager) UpdateQueue(size, capacity int) {
	if !m.enabled {
		return
	}
	m.queueSize.Set(float64(size))
	m.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an enqueue attempt.
func (m *Manager) RecordQueueEnqueue(ok bool) {
	if !m.enabled {
		return
	}
	if ok {
		m.queueEnqueueRate.Inc()
		return
	}
	m.queueEnqueueErrors.Inc()
}

// RecordQueueDequeue counts a dequeue.
func (m *Manager) RecordQueueDequeue() {
	if !m.enabled {
		return
	}
	m.queueDequeueRate.Inc()
}

// UpdateWorkers sets the pool size and the number of busy workers.
func (m *Manager) UpdateWorkers(count, active int) {
	if !m.enabled {
		return
	}
	m.workerCount.Set(float64(count))
	m.workerActiveCount.Set(float64(active))
}

// RecordWorkerJob records one worker job latency and whether it failed.
func (m *Manager) RecordWorkerJob(latencyMs float64, failed bool) {
	if !m.enabled {
		return
	}
	m.workerProcessingLatency.Observe(latencyMs)
	if failed {
		m.workerErrorRate.Inc()
	}
}

// Global convenience functions.

// RecordRun counts one analysis pass on the global manager.
func RecordRun(status string, latencyMs float64) { globalManager.RecordRun(status, latencyMs) }

// RecordEvents adds event counts on the global manager.
func RecordEvents(processed, skipped int) { globalManager.RecordEvents(processed, skipped) }

// RecordRecords adds record counts on the global manager.
func RecordRecords(duplicates, dropped int) { globalManager.RecordRecords(duplicates, dropped) }

// RecordAlerts adds alerts on the global manager.
func RecordAlerts(kind string, n int) { globalManager.RecordAlerts(kind, n) }

// UpdateColony sets colony gauges on the global manager.
func UpdateColony(colony string, individuals, unstable int) {
	globalManager.UpdateColony(colony, individuals, unstable)
}

// RecordSourceLoad records a snapshot load on the global manager.
func RecordSourceLoad(latencyMs float64, failed bool) { globalManager.RecordSourceLoad(latencyMs, failed) }

// UpdateQueue sets queue gauges on the global manager.
func UpdateQueue(size, capacity int) { globalManager.UpdateQueue(size, capacity) }

// RecordQueueEnqueue counts an enqueue attempt on the global manager.
func RecordQueueEnqueue(ok bool) { globalManager.RecordQueueEnqueue(ok) }

// RecordQueueDequeue counts a dequeue on the global manager.
func RecordQueueDequeue() { globalManager.RecordQueueDequeue() }

// UpdateWorkers sets worker gauges on the global manager.
func UpdateWorkers(count, active int) { globalManager.UpdateWorkers(count, active) }

// RecordWorkerJob records a worker job on the global manager.
func RecordWorkerJob(latencyMs float64, failed bool) { globalManager.RecordWorkerJob(latencyMs, failed) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
