package grabber

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMetricsNamespace prefixes every metric name.
const DefaultMetricsNamespace = "tube_grabber"

// Metrics exports request, cascade, fallback and transcode telemetry.
// A nil *Metrics records nothing.
type Metrics struct {
	// requests counts finished requests by operation and outcome.
	requests *prometheus.CounterVec
	// requestDuration observes whole-request latency by operation.
	requestDuration *prometheus.HistogramVec
	// attempts counts cascade steps by identity, relaxation and outcome.
	attempts *prometheus.CounterVec
	// attemptDuration observes cascade step latency by identity.
	attemptDuration *prometheus.HistogramVec
	// fallbacks counts library fallback runs by outcome.
	fallbacks *prometheus.CounterVec
	// transcodes counts transcoder runs by operation and outcome.
	transcodes *prometheus.CounterVec
	// sweptFiles counts stale scratch files removed at startup.
	sweptFiles prometheus.Counter
}

// NewMetrics registers the collectors on reg, or on the default registerer when reg is nil.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = DefaultMetricsNamespace
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	downloadBuckets := prometheus.ExponentialBuckets(0.5, 2, 12) //nolint:mnd // 0.5s to ~17m.

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Finished requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Whole-request latency.",
			Buckets:   downloadBuckets,
		}, []string{"operation"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_attempts_total",
			Help:      "Cascade steps by client identity, relaxation and outcome.",
		}, []string{"identity", "relaxation", "outcome"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cascade_attempt_duration_seconds",
			Help:      "Cascade step latency by client identity.",
			Buckets:   downloadBuckets,
		}, []string{"identity"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "library_fallbacks_total",
			Help:      "Library fallback runs by outcome.",
		}, []string{"outcome"}),
		transcodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcodes_total",
			Help:      "Transcoder runs by operation and outcome.",
		}, []string{"operation", "outcome"}),
		sweptFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scratch_swept_files_total",
			Help:      "Stale scratch files removed.",
		}),
	}

	collectors := []prometheus.Collector{
		m.requests,
		m.requestDuration,
		m.attempts,
		m.attemptDuration,
		m.fallbacks,
		m.transcodes,
		m.sweptFiles,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	m.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.requests.WithLabelValues(operation, outcomeLabel(err)).Inc()
}

// ObserveAttempt records one resolved cascade step.
func (m *Metrics) ObserveAttempt(attempt *DownloadAttempt) {
	if m == nil || attempt == nil {
		return
	}

	identity := attempt.Identity.String()

	m.attemptDuration.WithLabelValues(identity).Observe(attempt.Duration.Seconds())
	m.attempts.WithLabelValues(identity, string(attempt.Relaxation), attempt.Outcome).Inc()
}

// ObserveFallback records one library fallback run.
func (m *Metrics) ObserveFallback(err error) {
	if m == nil {
		return
	}

	m.fallbacks.WithLabelValues(outcomeLabel(err)).Inc()
}

// ObserveTranscode records one transcoder run.
func (m *Metrics) ObserveTranscode(operation string, err error) {
	if m == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}

	m.transcodes.WithLabelValues(operation, outcome).Inc()
}

// ObserveSweep records removed stale scratch files.
func (m *Metrics) ObserveSweep(removed int) {
	if m == nil || removed <= 0 {
		return
	}

	m.sweptFiles.Add(float64(removed))
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}

	return KindOf(err).String()
}
