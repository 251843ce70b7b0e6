package errors

import "fmt"

// ReasonCode is the routing core's closed taxonomy of failure kinds.
// These are emitted verbatim as timeline event "reason_code" values and
// drive circuit-breaker bookkeeping; they are a fixed vocabulary, not a
// Go error type hierarchy, so they can be serialized directly into the
// append-only event log.
type ReasonCode string

const (
	// ReasonLLMNone means the provider returned no text at all.
	ReasonLLMNone ReasonCode = "llm_none"
	// ReasonSchemaInvalid means the parsed JSON did not validate or lacked the citation.
	ReasonSchemaInvalid ReasonCode = "schema_invalid"
	// ReasonLatencyExceeded means the call's measured duration exceeded the per-call cap.
	ReasonLatencyExceeded ReasonCode = "latency_exceeded"
	// ReasonPolicyCost means PolicyGate rejected the provider on estimated cost.
	ReasonPolicyCost ReasonCode = "policy_cost"
	// ReasonPolicyCapability means PolicyGate rejected the provider on missing capability.
	ReasonPolicyCapability ReasonCode = "policy_capability"
	// ReasonSLATimeoutTotal means the end-to-end SLA budget was exhausted.
	ReasonSLATimeoutTotal ReasonCode = "sla_timeout_total"
	// ReasonToolArgInvalid means tool arguments failed schema validation.
	ReasonToolArgInvalid ReasonCode = "tool_arg_invalid"
	// ReasonToolGuardDenied means a guardrail rejected a tool call.
	ReasonToolGuardDenied ReasonCode = "tool_guard_denied"
	// ReasonToolExecError means a tool handler raised and was normalized to an error object.
	ReasonToolExecError ReasonCode = "tool_exec_error"
)

// RouterError pairs a ReasonCode with the underlying cause for logging.
type RouterError struct {
	Reason ReasonCode
	Err    error
}

func (e *RouterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return string(e.Reason)
}

func (e *RouterError) Unwrap() error { return e.Err }

// NewRouterError builds a RouterError for the given reason code.
func NewRouterError(reason ReasonCode, err error) *RouterError {
	return &RouterError{Reason: reason, Err: err}
}
