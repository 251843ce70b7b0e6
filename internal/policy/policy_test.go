package policy

import (
	"testing"

	"github.com/cklxx-labs/agentcore/internal/errors"
	"github.com/cklxx-labs/agentcore/internal/llm"
)

func f64(v float64) *float64 { return &v }

func TestGate_Allows_NoLimitsSet(t *testing.T) {
	g := NewGate()
	spec := llm.ProviderSpec{Name: "qwen", CostInputPer1K: 0.01, CostOutputPer1K: 0.02}
	ok, reason := g.Allows(spec, Policy{}, 1000)
	if !ok || reason != "" {
		t.Fatalf("expected allowed with no reason, got ok=%v reason=%v", ok, reason)
	}
}

func TestGate_RejectsOverCostCeiling(t *testing.T) {
	g := NewGate()
	spec := llm.ProviderSpec{Name: "expensive", CostInputPer1K: 1.0, CostOutputPer1K: 1.0}
	p := Policy{MaxCostUSDPerRequest: f64(0.5)}

	ok, reason := g.Allows(spec, p, 1000)
	if ok || reason != errors.ReasonPolicyCost {
		t.Fatalf("expected policy_cost rejection, got ok=%v reason=%v", ok, reason)
	}
}

func TestGate_AllowsWithinCostCeiling(t *testing.T) {
	g := NewGate()
	spec := llm.ProviderSpec{Name: "cheap", CostInputPer1K: 0.001, CostOutputPer1K: 0.002}
	p := Policy{MaxCostUSDPerRequest: f64(1.0)}

	ok, _ := g.Allows(spec, p, 1000)
	if !ok {
		t.Fatalf("expected allowed within cost ceiling")
	}
}

func TestGate_RejectsMissingCapability(t *testing.T) {
	g := NewGate()
	spec := llm.ProviderSpec{Name: "qwen", Capabilities: []string{"code"}}
	p := Policy{RequiredCapabilities: []string{"code", "vision"}}

	ok, reason := g.Allows(spec, p, 1000)
	if ok || reason != errors.ReasonPolicyCapability {
		t.Fatalf("expected policy_capability rejection, got ok=%v reason=%v", ok, reason)
	}
}

func TestGate_AllowsWhenAllCapabilitiesPresent(t *testing.T) {
	g := NewGate()
	spec := llm.ProviderSpec{Name: "claude", Capabilities: []string{"code", "vision", "reasoning"}}
	p := Policy{RequiredCapabilities: []string{"code", "vision"}}

	ok, _ := g.Allows(spec, p, 1000)
	if !ok {
		t.Fatalf("expected allowed, provider has all required capabilities")
	}
}

func TestEstimateTokens_FloorsAtDefault(t *testing.T) {
	if got := EstimateTokens("short"); got != defaultEstTokens {
		t.Errorf("EstimateTokens(short) = %d, want floor %d", got, defaultEstTokens)
	}
}

func TestEstimateTokens_ScalesWithPromptLength(t *testing.T) {
	long := make([]byte, 20000)
	for i := range long {
		long[i] = 'a'
	}
	got := EstimateTokens(string(long))
	if got <= defaultEstTokens {
		t.Errorf("expected scaled estimate above floor, got %d", got)
	}
}

func TestResolveEffectivePolicy_NilOverrideReturnsGlobal(t *testing.T) {
	global := Policy{MaxLatencyMs: f64(5000), OnSLATimeout: "degrade"}
	merged := ResolveEffectivePolicy(global, nil)
	if merged.OnSLATimeout != "degrade" {
		t.Errorf("expected global to pass through unchanged")
	}
}

func TestResolveEffectivePolicy_ShallowMergesOverride(t *testing.T) {
	global := Policy{
		MaxLatencyMs:      f64(5000),
		MaxLatencyMsTotal: f64(20000),
		OnSLATimeout:      "degrade",
	}
	override := Policy{MaxLatencyMs: f64(2000)}

	merged := ResolveEffectivePolicy(global, &override)
	if *merged.MaxLatencyMs != 2000 {
		t.Errorf("expected override to win for MaxLatencyMs, got %v", *merged.MaxLatencyMs)
	}
	if *merged.MaxLatencyMsTotal != 20000 {
		t.Errorf("expected global MaxLatencyMsTotal to fall through, got %v", *merged.MaxLatencyMsTotal)
	}
	if merged.OnSLATimeout != "degrade" {
		t.Errorf("expected global OnSLATimeout to fall through, got %q", merged.OnSLATimeout)
	}
}
