package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry holds every site metric. It is served on /api/metrics.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Custom histogram buckets for request and submitter latencies,
	// from a few milliseconds up to slow upstream endpoints.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Page session Metrics
	ActivePageSessions = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "drsite_page_sessions_active",
			Help: "Number of live page sessions",
		},
	)

	PageStreams = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "drsite_page_streams_active",
			Help: "Number of connected page patch streams",
		},
	)

	DroppedPatches = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "drsite_page_patches_dropped_total",
			Help: "Patches dropped because a page outbox was full",
		},
	)

	// Business Metrics
	FormSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drsite_form_submissions_total",
			Help: "Total number of form submit attempts by outcome",
		},
		[]string{"form", "status"},
	)

	FieldValidationFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drsite_field_validation_failures_total",
			Help: "Total number of failed field checks",
		},
		[]string{"form", "field"},
	)

	NotificationsShown = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drsite_notifications_total",
			Help: "Total number of notices shown",
		},
		[]string{"severity"},
	)

	ConsentChoices = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drsite_cookie_consent_total",
			Help: "Cookie banner choices",
		},
		[]string{"choice"},
	)

	// Submitter Metrics
	SubmitterRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drsite_submitter_duration_seconds",
			Help:    "Duration of submission deliveries in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"submitter", "status"},
	)

	SubmitterRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drsite_submitter_total",
			Help: "Total number of submission deliveries",
		},
		[]string{"submitter", "status"},
	)

	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "drsite_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
// until stop is closed.
func RecordInfrastructureMetrics(stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				GoRoutines.Set(float64(runtime.NumGoroutine()))
				HeapAlloc.Set(float64(m.HeapAlloc))
			}
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
