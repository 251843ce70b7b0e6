// Package policy evaluates a provider against the effective policy
// envelope for a call. The gate checks the cost ceiling and required
// capabilities; the per-call latency cap and end-to-end SLA deadline are
// carried in Policy and enforced by the router, not by the gate.
package policy

import (
	"github.com/cklxx-labs/agentcore/internal/config"
	"github.com/cklxx-labs/agentcore/internal/errors"
	"github.com/cklxx-labs/agentcore/internal/llm"
)

// Policy is the effective set of predicates governing one request.
// Numeric fields are pointers so "unset" (no ceiling) is distinguishable
// from a zero ceiling.
type Policy struct {
	MaxLatencyMs         *float64
	MaxLatencyMsTotal    *float64
	MaxCostUSDPerRequest *float64
	RequiredCapabilities []string
	OnSLATimeout         string
	CircuitBreaker       config.CircuitPolicy
}

const defaultEstTokens = 1000

// EstimateTokens derives the default est_tokens term: the spec's literal
// 1000-token floor for short prompts, scaling up for longer ones so cost
// actually tracks request size. See DESIGN.md Open Question 3.
func EstimateTokens(userPrompt string) int {
	n := len(userPrompt) / 4
	if n < defaultEstTokens {
		return defaultEstTokens
	}
	return n
}

// Gate evaluates a ProviderSpec against an effective Policy.
type Gate struct{}

// NewGate builds a Gate. Stateless: kept as a type for symmetry with the
// other components and so callers can later add metrics hooks.
func NewGate() *Gate { return &Gate{} }

// Allows reports whether spec may be attempted under p, given an
// estimated token count for the request. On rejection it also returns
// the reason code the router records.
func (g *Gate) Allows(spec llm.ProviderSpec, p Policy, estTokens int) (bool, errors.ReasonCode) {
	if estTokens <= 0 {
		estTokens = defaultEstTokens
	}

	if p.MaxCostUSDPerRequest != nil {
		cost := (spec.CostInputPer1K + spec.CostOutputPer1K) * (float64(estTokens) / 1000.0)
		if cost > *p.MaxCostUSDPerRequest {
			return false, errors.ReasonPolicyCost
		}
	}

	if len(p.RequiredCapabilities) > 0 {
		for _, cap := range p.RequiredCapabilities {
			if !spec.HasCapability(cap) {
				return false, errors.ReasonPolicyCapability
			}
		}
	}

	return true, ""
}

// ResolveEffectivePolicy shallow-merges a tool-level override onto the
// global policy: any override field that is set (non-nil / non-empty)
// wins, everything else falls through to global. Kept as a standalone,
// unit-testable function per spec.md's explicit call-out.
func ResolveEffectivePolicy(global Policy, override *Policy) Policy {
	if override == nil {
		return global
	}

	merged := global
	if override.MaxLatencyMs != nil {
		merged.MaxLatencyMs = override.MaxLatencyMs
	}
	if override.MaxLatencyMsTotal != nil {
		merged.MaxLatencyMsTotal = override.MaxLatencyMsTotal
	}
	if override.MaxCostUSDPerRequest != nil {
		merged.MaxCostUSDPerRequest = override.MaxCostUSDPerRequest
	}
	if len(override.RequiredCapabilities) > 0 {
		merged.RequiredCapabilities = override.RequiredCapabilities
	}
	if override.OnSLATimeout != "" {
		merged.OnSLATimeout = override.OnSLATimeout
	}
	if override.CircuitBreaker.FailureThreshold != 0 {
		merged.CircuitBreaker.FailureThreshold = override.CircuitBreaker.FailureThreshold
	}
	if override.CircuitBreaker.CooldownSeconds != 0 {
		merged.CircuitBreaker.CooldownSeconds = override.CircuitBreaker.CooldownSeconds
	}
	return merged
}

// FromConfig converts a config.Policy snapshot (as loaded from
// routing.yaml) into the domain Policy type the gate evaluates.
func FromConfig(c config.Policy) Policy {
	return Policy{
		MaxLatencyMs:         c.MaxLatencyMs,
		MaxLatencyMsTotal:    c.MaxLatencyMsTotal,
		MaxCostUSDPerRequest: c.MaxCostUSDPerRequest,
		RequiredCapabilities: c.RequiredCapabilities,
		OnSLATimeout:         c.OnSLATimeout,
		CircuitBreaker:       c.CircuitBreaker,
	}
}
