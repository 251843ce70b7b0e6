// Package metrics exposes Prometheus counters and histograms for the
// routing core: provider attempts/successes/failures by reason code,
// circuit-breaker state transitions, and structured-retry attempts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cklxx-labs/agentcore/internal/breaker"
	"github.com/cklxx-labs/agentcore/internal/errors"
)

// Collector owns every metric this package exposes, registered against
// a caller-supplied registry rather than the global default one, so
// tests (and multiple engines in one process) never collide.
type Collector struct {
	providerAttemptsTotal   *prometheus.CounterVec
	providerSuccessTotal    *prometheus.CounterVec
	providerFailuresTotal   *prometheus.CounterVec
	providerLatencySeconds  *prometheus.HistogramVec
	circuitTransitionsTotal *prometheus.CounterVec
	structuredRetriesTotal  *prometheus.CounterVec
}

// NewCollector builds a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		providerAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcore",
			Subsystem: "router",
			Name:      "provider_attempts_total",
			Help:      "Total number of provider attempts, by provider.",
		}, []string{"provider"}),

		providerSuccessTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcore",
			Subsystem: "router",
			Name:      "provider_success_total",
			Help:      "Total number of successful provider attempts, by provider.",
		}, []string{"provider"}),

		providerFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcore",
			Subsystem: "router",
			Name:      "provider_failures_total",
			Help:      "Total number of failed provider attempts, by provider and reason code.",
		}, []string{"provider", "reason_code"}),

		providerLatencySeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentcore",
			Subsystem: "router",
			Name:      "provider_latency_seconds",
			Help:      "Measured duration of a provider attempt, in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),

		circuitTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcore",
			Subsystem: "breaker",
			Name:      "circuit_transitions_total",
			Help:      "Total number of circuit-breaker state transitions, by provider and destination state.",
		}, []string{"provider", "to_state"}),

		structuredRetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcore",
			Subsystem: "router",
			Name:      "structured_retries_total",
			Help:      "Total number of structured-answer retry attempts, by provider.",
		}, []string{"provider"}),
	}

	reg.MustRegister(
		c.providerAttemptsTotal,
		c.providerSuccessTotal,
		c.providerFailuresTotal,
		c.providerLatencySeconds,
		c.circuitTransitionsTotal,
		c.structuredRetriesTotal,
	)
	return c
}

// ObserveAttempt records one provider attempt being made.
func (c *Collector) ObserveAttempt(provider string) {
	c.providerAttemptsTotal.WithLabelValues(provider).Inc()
}

// ObserveSuccess records a successful attempt and its duration.
func (c *Collector) ObserveSuccess(provider string, duration time.Duration) {
	c.providerSuccessTotal.WithLabelValues(provider).Inc()
	c.providerLatencySeconds.WithLabelValues(provider).Observe(duration.Seconds())
}

// ObserveFailure records a failed attempt, its reason code, and duration.
func (c *Collector) ObserveFailure(provider string, reason errors.ReasonCode, duration time.Duration) {
	c.providerFailuresTotal.WithLabelValues(provider, string(reason)).Inc()
	c.providerLatencySeconds.WithLabelValues(provider).Observe(duration.Seconds())
}

// ObserveCircuitTransition records a breaker moving into state toState.
func (c *Collector) ObserveCircuitTransition(provider string, toState breaker.State) {
	c.circuitTransitionsTotal.WithLabelValues(provider, toState.String()).Inc()
}

// ObserveStructuredRetry records one corrective retry inside the
// structured-answer loop for provider.
func (c *Collector) ObserveStructuredRetry(provider string) {
	c.structuredRetriesTotal.WithLabelValues(provider).Inc()
}
