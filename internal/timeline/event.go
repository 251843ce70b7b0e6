// Package timeline implements the append-only per-session event log the
// router writes to as it attempts providers, plus an explain/summarize
// adapter that reconstructs a human-readable account of one session
// from its recorded events.
package timeline

import "time"

// Kind is one of the routing core's fixed event vocabulary. Event kinds
// are a closed set so downstream explain/summarize consumers can switch
// on them exhaustively.
type Kind string

const (
	EventProviderAttempt     Kind = "provider_attempt"
	EventProviderSkipPolicy  Kind = "provider_skip_policy"
	EventCircuitSkipOpen     Kind = "circuit_skip_open"
	EventCircuitHalfOpen     Kind = "circuit_half_open"
	EventCircuitOpen         Kind = "circuit_open"
	EventCircuitClosed       Kind = "circuit_closed"
	EventProviderFailed      Kind = "provider_failed"
	EventProviderSuccess     Kind = "provider_success"
	EventStructuredAttempt   Kind = "structured_attempt"
	EventStructuredRetry     Kind = "structured_retry"
	EventStructuredSuccess   Kind = "structured_success"
	EventSLATimeoutTotal     Kind = "sla_timeout_total"
	EventSLADegradeTotal     Kind = "sla_degrade_total"
	EventAllProvidersFailed  Kind = "all_providers_failed"
	EventFinalOutput         Kind = "final_output"
	EventFinalOutputFallback Kind = "final_output_fallback"
)

// Event is one append-only timeline entry. DurationMs is omitted unless
// the step it records is a bounded, measured operation.
type Event struct {
	Timestamp  time.Time              `json:"ts"`
	SessionID  string                 `json:"session_id"`
	Event      Kind                   `json:"event"`
	Details    map[string]interface{} `json:"details,omitempty"`
	DurationMs *float64               `json:"duration_ms,omitempty"`
}
