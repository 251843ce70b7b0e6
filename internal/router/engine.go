package router

import (
	"context"
	"errors"
	"time"

	"github.com/cklxx-labs/agentcore/internal/breaker"
	"github.com/cklxx-labs/agentcore/internal/clock"
	"github.com/cklxx-labs/agentcore/internal/config"
	agenterrors "github.com/cklxx-labs/agentcore/internal/errors"
	"github.com/cklxx-labs/agentcore/internal/llm"
	"github.com/cklxx-labs/agentcore/internal/metrics"
	"github.com/cklxx-labs/agentcore/internal/output"
	"github.com/cklxx-labs/agentcore/internal/policy"
	"github.com/cklxx-labs/agentcore/internal/timeline"
)

// AttemptRequest is one call into the router: a task already resolved
// to its tool plan and tool result (if any), ready to be answered.
type AttemptRequest struct {
	SessionID  string
	Tool       string
	UserPrompt string
	Citation   string
	ToolUsed   string
	ToolResult interface{}
	SchemaJSON string
}

// AttemptResult is the router's contract return value: a nil Payload
// means every candidate was exhausted (or the SLA aborted) without a
// valid answer.
type AttemptResult struct {
	Payload  *output.Payload
	Provider string
	Model    string
	Tried    []string
}

// Engine is the Router/FailoverEngine: it owns the provider registry,
// the effective routing configuration, and the shared breaker/gate/
// contract/timeline it drives on every attempt.
type Engine struct {
	Providers  map[string]llm.ProviderSpec
	Registry   config.Registry
	Routing    config.Routing
	Factory    llm.ClientFactory
	Breakers   *breaker.Manager
	Gate       *policy.Gate
	Contract   *output.Contract
	Clock      clock.Clock
	Timeline   *timeline.Writer
	Metrics    *metrics.Collector
	Structured StructuredConfig
}

// NewEngine builds an Engine with sensible defaults for any field left
// unset (a real clock, a default-configured structured-retry loop, no
// metrics collector). Callers that want Prometheus observation set
// Engine.Metrics directly after construction.
func NewEngine(registry config.Registry, routing config.Routing, factory llm.ClientFactory, breakers *breaker.Manager, contract *output.Contract) *Engine {
	return &Engine{
		Providers:  BuildProviderSpecs(registry),
		Registry:   registry,
		Routing:    routing,
		Factory:    factory,
		Breakers:   breakers,
		Gate:       policy.NewGate(),
		Contract:   contract,
		Clock:      clock.System{},
		Structured: DefaultStructuredConfig(),
	}
}

// Attempt implements spec.md §4.1's candidate selection, attempt loop,
// and tag accumulation. It never returns an error for an ordinary
// exhausted-candidates outcome; AttemptResult.Payload is nil in that
// case, matching the "(payload | null, ...)" contract.
func (e *Engine) Attempt(ctx context.Context, req AttemptRequest) AttemptResult {
	candidates := SelectCandidates(EnvOverride(), req.Tool, e.Routing, e.Registry, e.Providers)
	effPolicy := e.resolveEffectivePolicy(req.Tool)
	estTokens := policy.EstimateTokens(req.UserPrompt)

	attemptStart := e.Clock.Now()
	var tried []string

	for _, cand := range candidates {
		elapsedMs := float64(e.Clock.Now().Sub(attemptStart).Microseconds()) / 1000.0
		if effPolicy.MaxLatencyMsTotal != nil && elapsedMs >= *effPolicy.MaxLatencyMsTotal {
			tried = append(tried, "sla_timeout_total")
			e.emit(req.SessionID, timeline.EventSLATimeoutTotal, map[string]interface{}{"elapsed_ms": elapsedMs})

			if effPolicy.OnSLATimeout == "degrade" {
				payload := output.BuildDegraded(req.Citation, req.ToolUsed, req.ToolResult)
				tried = append(tried, "sla_degrade")
				e.emit(req.SessionID, timeline.EventSLADegradeTotal, map[string]interface{}{"tool_used": req.ToolUsed})
				e.emit(req.SessionID, timeline.EventFinalOutputFallback, map[string]interface{}{})
				return AttemptResult{Payload: &payload, Tried: tried}
			}

			return AttemptResult{Tried: tried}
		}

		b := e.Breakers.GetForPolicy(cand.Name, effPolicy.CircuitBreaker)
		beforeState := b.State()
		if b.ShouldSkip() {
			if b.State() != beforeState {
				e.emit(req.SessionID, timeline.EventCircuitHalfOpen, map[string]interface{}{"provider": cand.Name})
				if e.Metrics != nil {
					e.Metrics.ObserveCircuitTransition(cand.Name, b.State())
				}
			}
			tried = append(tried, "skip_circuit_open:"+cand.Name)
			e.emit(req.SessionID, timeline.EventCircuitSkipOpen, map[string]interface{}{"provider": cand.Name})
			continue
		}
		if b.State() != beforeState {
			e.emit(req.SessionID, timeline.EventCircuitHalfOpen, map[string]interface{}{"provider": cand.Name})
			if e.Metrics != nil {
				e.Metrics.ObserveCircuitTransition(cand.Name, b.State())
			}
		}

		if allowed, reason := e.Gate.Allows(cand.Spec, effPolicy, estTokens); !allowed {
			tried = append(tried, "skip_policy:"+cand.Name)
			e.emit(req.SessionID, timeline.EventProviderSkipPolicy, map[string]interface{}{
				"provider":    cand.Name,
				"reason_code": string(reason),
			})
			continue
		}

		client, err := e.Factory.GetClient(cand.Spec)
		if err != nil {
			tried = append(tried, cand.Name)
			e.recordFailure(req.SessionID, b, cand.Name, "")
			continue
		}

		e.emit(req.SessionID, timeline.EventProviderAttempt, map[string]interface{}{"provider": cand.Name})
		if e.Metrics != nil {
			e.Metrics.ObserveAttempt(cand.Name)
		}
		structuredCfg := e.Structured
		structuredCfg.Metrics = e.Metrics
		callStart := e.Clock.Now()
		payload, answerErr := AnswerStructured(ctx, client, e.Contract, req.SchemaJSON, req.SessionID, req.UserPrompt, req.Citation, structuredCfg, e.Timeline)
		durationMs := float64(e.Clock.Now().Sub(callStart).Microseconds()) / 1000.0

		duration := time.Duration(durationMs * float64(time.Millisecond))

		if effPolicy.MaxLatencyMs != nil && durationMs > *effPolicy.MaxLatencyMs {
			tried = append(tried, "latency_exceeded:"+cand.Name)
			e.emitDuration(req.SessionID, timeline.EventProviderFailed, map[string]interface{}{
				"provider":    cand.Name,
				"reason_code": string(agenterrors.ReasonLatencyExceeded),
			}, durationMs)
			if e.Metrics != nil {
				e.Metrics.ObserveFailure(cand.Name, agenterrors.ReasonLatencyExceeded, duration)
			}
			e.recordFailure(req.SessionID, b, cand.Name, agenterrors.ReasonLatencyExceeded)
			continue
		}

		if answerErr == nil && payload != nil {
			e.recordSuccess(req.SessionID, b, cand.Name)
			tried = append(tried, cand.Name)
			e.emitDuration(req.SessionID, timeline.EventProviderSuccess, map[string]interface{}{"provider": cand.Name}, durationMs)
			e.emit(req.SessionID, timeline.EventFinalOutput, map[string]interface{}{"provider": cand.Name})
			if e.Metrics != nil {
				e.Metrics.ObserveSuccess(cand.Name, duration)
			}
			return AttemptResult{Payload: payload, Provider: cand.Name, Model: cand.Spec.Model, Tried: tried}
		}

		tried = append(tried, cand.Name)
		reason := reasonFromErr(answerErr)
		e.recordFailure(req.SessionID, b, cand.Name, reason)
		e.emitDuration(req.SessionID, timeline.EventProviderFailed, map[string]interface{}{
			"provider":    cand.Name,
			"reason_code": string(reason),
		}, durationMs)
		if e.Metrics != nil {
			e.Metrics.ObserveFailure(cand.Name, reason, duration)
		}
	}

	e.emit(req.SessionID, timeline.EventAllProvidersFailed, map[string]interface{}{"tried": tried})
	return AttemptResult{Tried: tried}
}

func (e *Engine) resolveEffectivePolicy(tool string) policy.Policy {
	global := policy.FromConfig(e.Routing.Policies)
	if tool == "" {
		return global
	}
	if override, ok := e.Routing.TaskRouting.Policies[tool]; ok {
		overridden := policy.FromConfig(override)
		return policy.ResolveEffectivePolicy(global, &overridden)
	}
	return global
}

func (e *Engine) recordFailure(sessionID string, b *breaker.Breaker, provider string, reason agenterrors.ReasonCode) {
	beforeState := b.State()
	b.RecordFailure()
	if b.State() == breaker.StateOpen && beforeState != breaker.StateOpen {
		e.emit(sessionID, timeline.EventCircuitOpen, map[string]interface{}{
			"provider":    provider,
			"reason_code": string(reason),
		})
		if e.Metrics != nil {
			e.Metrics.ObserveCircuitTransition(provider, breaker.StateOpen)
		}
	}
}

func (e *Engine) recordSuccess(sessionID string, b *breaker.Breaker, provider string) {
	beforeState := b.State()
	b.RecordSuccess()
	if b.State() == breaker.StateClosed && beforeState == breaker.StateHalfOpen {
		e.emit(sessionID, timeline.EventCircuitClosed, map[string]interface{}{"provider": provider})
		if e.Metrics != nil {
			e.Metrics.ObserveCircuitTransition(provider, breaker.StateClosed)
		}
	}
}

func reasonFromErr(err error) agenterrors.ReasonCode {
	if err == nil {
		return ""
	}
	var routerErr *agenterrors.RouterError
	if errors.As(err, &routerErr) {
		return routerErr.Reason
	}
	return agenterrors.ReasonSchemaInvalid
}

func (e *Engine) emit(sessionID string, kind timeline.Kind, details map[string]interface{}) {
	if e.Timeline == nil {
		return
	}
	e.Timeline.Emit(sessionID, kind, details)
}

func (e *Engine) emitDuration(sessionID string, kind timeline.Kind, details map[string]interface{}, durationMs float64) {
	if e.Timeline == nil {
		return
	}
	e.Timeline.EmitDuration(sessionID, kind, details, durationMs)
}
