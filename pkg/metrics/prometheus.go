// Package metrics provides Prometheus metrics for the SafeTravel service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Panic button
	holdsStarted   prometheus.Counter
	holdsCancelled prometheus.Counter
	holdsCommitted prometheus.Counter
	holdDuration   prometheus.Histogram
	holdsActive    prometheus.Gauge

	// Position simulation
	jitterTicks      prometheus.Counter
	simulatorsActive prometheus.Gauge

	// Alerts
	alertsRaised     prometheus.Counter
	alertsDuplicate  prometheus.Counter
	alertsDispatched prometheus.Counter
	alertsDropped    prometheus.Counter
	dispatchLatency  prometheus.Histogram
	alertsStored     prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount      prometheus.Gauge
	workerErrors     prometheus.Counter
	workerProcessing prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager on a custom registry without the default Go collectors.
var (
	globalManager  *Manager                  //nolint:gochecknoglobals // singleton metrics manager
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served by /healthz
)

// latencyBuckets are milliseconds.
var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals // shared buckets

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "safetravel",
		subsystem:        "demo",
		histogramBuckets: latencyBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.holdsStarted = m.counter("holds_started_total", "Panic button holds started")
	m.holdsCancelled = m.counter("holds_cancelled_total", "Panic button holds released before completion")
	m.holdsCommitted = m.counter("holds_committed_total", "Panic button holds held to completion")
	m.holdDuration = m.histogram("hold_duration_milliseconds", "Time a hold lasted before release or commit",
		[]float64{100, 250, 500, 1000, 1500, 2000, 2500, 3000, 5000})
	m.holdsActive = m.gauge("holds_active", "Controls currently in the holding state")

	m.jitterTicks = m.counter("jitter_ticks_total", "Simulated position samples produced")
	m.simulatorsActive = m.gauge("simulators_active", "Position simulators currently emitting")

	m.alertsRaised = m.counter("alerts_raised_total", "Emergency alerts raised by committed holds")
	m.alertsDuplicate = m.counter("alerts_duplicate_total", "Alerts suppressed because their session already raised one")
	m.alertsDispatched = m.counter("alerts_dispatched_total", "Alerts delivered to the notification surface")
	m.alertsDropped = m.counter("alerts_dropped_total", "Alerts rejected by the dispatch queue")
	m.dispatchLatency = m.histogram("dispatch_latency_milliseconds", "Time to deliver an alert", m.histogramBuckets)
	m.alertsStored = m.gauge("alerts_stored", "Alerts held by the alert store")

	m.queueSize = m.gauge("queue_size", "Alerts waiting for dispatch")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum alerts the dispatch queue holds")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Dispatch queue size over capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Alerts enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Alerts dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Failed enqueue attempts")

	m.workerCount = m.gauge("worker_count", "Dispatch workers running")
	m.workerErrors = m.counter("worker_errors_total", "Dispatch worker failures")
	m.workerProcessing = m.histogram("worker_processing_milliseconds", "Time a worker spent on one alert", m.histogramBuckets)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP requests by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Errors by component and error type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "HTTP errors by endpoint, method and error type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// Panic button.

// RecordHoldStarted counts a hold that entered the holding state.
func RecordHoldStarted() {
	globalManager.holdsStarted.Inc()
	globalManager.holdsActive.Inc()
}

// RecordHoldCancelled counts a hold released early and how long it lasted.
func RecordHoldCancelled(heldMs float64) {
	globalManager.holdsCancelled.Inc()
	globalManager.holdsActive.Dec()
	globalManager.holdDuration.Observe(heldMs)
}

// RecordHoldCommitted counts a hold that reached completion.
func RecordHoldCommitted(heldMs float64) {
	globalManager.holdsCommitted.Inc()
	globalManager.holdsActive.Dec()
	globalManager.holdDuration.Observe(heldMs)
}

// Position simulation.

// RecordJitterTick counts one simulated sample.
func RecordJitterTick() {
	globalManager.jitterTicks.Inc()
}

// RecordSimulatorStarted increments the active simulator gauge.
func RecordSimulatorStarted() {
	globalManager.simulatorsActive.Inc()
}

// RecordSimulatorStopped decrements the active simulator gauge.
func RecordSimulatorStopped() {
	globalManager.simulatorsActive.Dec()
}

// Alerts.

// RecordAlertRaised counts an alert accepted for dispatch.
func RecordAlertRaised() {
	globalManager.alertsRaised.Inc()
}

// RecordAlertDuplicate counts a suppressed duplicate alert.
func RecordAlertDuplicate() {
	globalManager.alertsDuplicate.Inc()
}

// RecordAlertDispatched counts a delivered alert and its delivery latency.
func RecordAlertDispatched(latencyMs float64) {
	globalManager.alertsDispatched.Inc()
	globalManager.dispatchLatency.Observe(latencyMs)
}

// RecordAlertDropped counts an alert rejected by the queue.
func RecordAlertDropped() {
	globalManager.alertsDropped.Inc()
}

// UpdateAlertsStored sets the number of stored alerts.
func UpdateAlertsStored(count int) {
	globalManager.alertsStored.Set(float64(count))
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
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

// Workers.

// UpdateWorkerCount sets the number of dispatch workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerProcessingLatency records time spent on one alert.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessing.Observe(latencyMs)
}

// HTTP and errors.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an HTTP error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
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
