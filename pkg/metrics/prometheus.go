package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for allocation runs.
const (
	OutcomeSuccess    = "success"
	OutcomeInfeasible = "infeasible"
	OutcomeError      = "error"
)

// Manager manages all Prometheus metrics for the squad service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Allocation metrics
	allocations        *prometheus.CounterVec
	allocationDuration prometheus.Histogram
	repairMoves        prometheus.Histogram
	teamsPerAllocation prometheus.Histogram
	malformedRecords   prometheus.Counter
	duplicateRequests  prometheus.Counter

	// Store metrics
	rosterSize    prometheus.Gauge
	storedResults prometheus.Gauge

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount  prometheus.Gauge
	workerActive prometheus.Gauge
	jobLatency   prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Metrics register on the configured
// registry, the default registerer unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "squad",
		subsystem:        "allocator",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)

	m.allocations = auto.NewCounterVec(
		m.counterOpts("allocations_total", "Allocation runs by outcome and violated invariant"),
		[]string{"outcome", "invariant"},
	)
	m.allocationDuration = auto.NewHistogram(
		m.histogramOpts("allocation_duration_milliseconds", "Engine run time in milliseconds", m.histogramBuckets),
	)
	m.repairMoves = auto.NewHistogram(
		m.histogramOpts("repair_moves", "Repair moves applied per allocation", []float64{0, 1, 2, 4, 8, 16, 32, 64}),
	)
	m.teamsPerAllocation = auto.NewHistogram(
		m.histogramOpts("teams_per_allocation", "Teams produced per successful allocation", []float64{1, 2, 3, 4, 6, 8, 12}),
	)
	m.malformedRecords = auto.NewCounter(
		m.counterOpts("malformed_records_total", "Signup records recovered with a fail-safe classification"),
	)
	m.duplicateRequests = auto.NewCounter(
		m.counterOpts("duplicate_requests_total", "Allocation requests rejected as duplicates"),
	)

	m.rosterSize = auto.NewGauge(m.gaugeOpts("roster_size", "Signups currently in the roster"))
	m.storedResults = auto.NewGauge(m.gaugeOpts("stored_results", "Allocation jobs kept in history"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Allocation jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum allocation queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Jobs rejected by the queue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured allocation workers"))
	m.workerActive = auto.NewGauge(m.gaugeOpts("worker_active", "Workers currently running an allocation"))
	m.jobLatency = auto.NewHistogram(
		m.histogramOpts("job_latency_milliseconds", "Time from submission to completion in milliseconds", m.histogramBuckets),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordAllocation counts one allocation run. invariant is empty unless the
// run was infeasible.
func (m *Manager) RecordAllocation(outcome, invariant string, durationMs float64) {
	m.allocations.WithLabelValues(outcome, invariant).Inc()
	m.allocationDuration.Observe(durationMs)
}

// RecordAllocationResult records the shape of a successful allocation.
func (m *Manager) RecordAllocationResult(teams, moves, malformed int) {
	m.teamsPerAllocation.Observe(float64(teams))
	m.repairMoves.Observe(float64(moves))
	m.malformedRecords.Add(float64(malformed))
}

// Package-level helpers record on the global manager.

// RecordAllocation counts one allocation run on the global manager.
func RecordAllocation(outcome, invariant string, durationMs float64) {
	globalManager.RecordAllocation(outcome, invariant, durationMs)
}

// RecordAllocationResult records the shape of a successful allocation.
func RecordAllocationResult(teams, moves, malformed int) {
	globalManager.RecordAllocationResult(teams, moves, malformed)
}

// RecordDuplicateRequest increments the duplicate request counter.
func RecordDuplicateRequest() {
	globalManager.duplicateRequests.Inc()
}

// UpdateRosterSize sets the number of signups in the roster.
func UpdateRosterSize(n int) {
	globalManager.rosterSize.Set(float64(n))
}

// UpdateStoredResults sets the number of jobs kept in history.
func UpdateStoredResults(n int) {
	globalManager.storedResults.Set(float64(n))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordJobLatency records submission-to-completion latency.
func RecordJobLatency(latencyMs float64) {
	globalManager.jobLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
