// Package router implements the top-level orchestrator: candidate
// selection, the SLA/circuit/policy gates, the attempt loop, and the
// structured-answer retry loop that coerces schema-valid LLM output.
package router

import (
	"os"

	"github.com/cklxx-labs/agentcore/internal/config"
	"github.com/cklxx-labs/agentcore/internal/llm"
)

// Candidate pairs a provider name with its resolved spec, so downstream
// code never has to re-look-up a provider by name mid-loop.
type Candidate struct {
	Name string
	Spec llm.ProviderSpec
}

// BuildProviderSpecs converts a decoded models/registry.yaml snapshot
// into the llm.ProviderSpec set the router and policy gate evaluate.
func BuildProviderSpecs(reg config.Registry) map[string]llm.ProviderSpec {
	specs := make(map[string]llm.ProviderSpec, len(reg.Providers))
	for name, p := range reg.Providers {
		specs[name] = llm.ProviderSpec{
			Name:            name,
			Model:           p.Model,
			Capabilities:    p.Capabilities,
			CostInputPer1K:  p.Cost.InputPer1KTokensUSD,
			CostOutputPer1K: p.Cost.OutputPer1KTokensUSD,
			BaseURL:         p.BaseURL,
			APIKeyEnv:       p.APIKeyEnv,
		}
	}
	return specs
}

// SelectCandidates computes the ordered candidate list for one (tool,
// session) per spec.md §4.1's precedence: env override > by_tool > tool
// fallback_chain > global fallback_chain > default provider. Unknown
// providers are filtered out silently at every step, matching §8's
// boundary case.
func SelectCandidates(envOverride string, tool string, routing config.Routing, registry config.Registry, providers map[string]llm.ProviderSpec) []Candidate {
	if envOverride != "" {
		if spec, ok := providers[envOverride]; ok {
			return []Candidate{{Name: envOverride, Spec: spec}}
		}
	}

	if tool != "" {
		if names, ok := routing.TaskRouting.ByTool[tool]; ok {
			return filterKnown(names, providers)
		}
		if names, ok := routing.TaskRouting.FallbackChain[tool]; ok {
			return filterKnown(names, providers)
		}
	}

	if len(routing.FallbackChain) > 0 {
		return filterKnown(routing.FallbackChain, providers)
	}

	if registry.DefaultProvider != "" {
		if spec, ok := providers[registry.DefaultProvider]; ok {
			return []Candidate{{Name: registry.DefaultProvider, Spec: spec}}
		}
	}

	return nil
}

func filterKnown(names []string, providers map[string]llm.ProviderSpec) []Candidate {
	candidates := make([]Candidate, 0, len(names))
	for _, name := range names {
		if spec, ok := providers[name]; ok {
			candidates = append(candidates, Candidate{Name: name, Spec: spec})
		}
	}
	return candidates
}

// EnvOverride reads the LLM_PROVIDER pin, matching spec.md §6's
// environment-variable surface.
func EnvOverride() string {
	return os.Getenv("LLM_PROVIDER")
}
