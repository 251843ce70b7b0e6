package timeline

import (
	"sort"

	"github.com/cklxx-labs/agentcore/internal/breaker"
	"github.com/cklxx-labs/agentcore/internal/llm"
	"github.com/cklxx-labs/agentcore/internal/policy"
)

// ProviderSummary aggregates one provider's attempts across a session's
// events.
type ProviderSummary struct {
	Provider     string `json:"provider"`
	Attempts     int    `json:"attempts"`
	Successes    int    `json:"successes"`
	Failures     int    `json:"failures"`
	PolicyAllows bool   `json:"policy_allows"`
	CircuitState string `json:"circuit_state"`
}

// Explanation is the result recovered from a session's events plus the
// statically-computed candidate list and effective policy for the tool
// that produced them, matching the Python prototype's
// routing_explain.py output shape.
type Explanation struct {
	SessionID       string            `json:"session_id"`
	Tool            string            `json:"tool"`
	Candidates      []string          `json:"candidates"`
	EffectivePolicy policy.Policy     `json:"effective_policy"`
	Providers       []ProviderSummary `json:"providers"`
}

// Explain summarizes a session's recorded events alongside the ordered
// candidate list and effective policy that were computed for its
// (tool, session) at call entry. providers/gate/breakers are supplied so
// each candidate's current policy-allowed flag and circuit state can be
// reported even for providers the session's events never mention.
func Explain(
	events []Event,
	sessionID, tool string,
	candidates []string,
	effPolicy policy.Policy,
	providers map[string]llm.ProviderSpec,
	gate *policy.Gate,
	breakers *breaker.Manager,
	estTokens int,
) Explanation {
	counts := make(map[string]*ProviderSummary, len(candidates))
	for _, name := range candidates {
		counts[name] = &ProviderSummary{Provider: name}
	}

	for _, ev := range events {
		if ev.SessionID != sessionID {
			continue
		}
		provider, _ := ev.Details["provider"].(string)
		if provider == "" {
			continue
		}
		s, ok := counts[provider]
		if !ok {
			s = &ProviderSummary{Provider: provider}
			counts[provider] = s
		}
		switch ev.Event {
		case EventProviderAttempt:
			s.Attempts++
		case EventProviderSuccess:
			s.Successes++
		case EventProviderFailed:
			s.Failures++
		}
	}

	for name, s := range counts {
		if spec, ok := providers[name]; ok && gate != nil {
			allowed, _ := gate.Allows(spec, effPolicy, estTokens)
			s.PolicyAllows = allowed
		}
		if breakers != nil {
			s.CircuitState = breakers.Get(name).State().String()
		}
	}

	summaries := make([]ProviderSummary, 0, len(counts))
	for _, s := range counts {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return indexOf(candidates, summaries[i].Provider) < indexOf(candidates, summaries[j].Provider)
	})

	return Explanation{
		SessionID:       sessionID,
		Tool:            tool,
		Candidates:      candidates,
		EffectivePolicy: effPolicy,
		Providers:       summaries,
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return len(names)
}

// Summary is timeline_view.py's supplemental per-session digest: total
// event count, success rate, and p50/p95 latency over every event that
// carried a duration_ms sample.
type Summary struct {
	EventCount   int     `json:"event_count"`
	SuccessRate  float64 `json:"success_rate"`
	P50LatencyMs float64 `json:"p50_latency_ms"`
	P95LatencyMs float64 `json:"p95_latency_ms"`
}

// Summarize computes Summary over one session's events.
func Summarize(events []Event) Summary {
	var successes, attempts int
	var durations []float64

	for _, ev := range events {
		switch ev.Event {
		case EventProviderSuccess:
			successes++
			attempts++
		case EventProviderFailed:
			attempts++
		}
		if ev.DurationMs != nil {
			durations = append(durations, *ev.DurationMs)
		}
	}

	sort.Float64s(durations)

	summary := Summary{EventCount: len(events)}
	if attempts > 0 {
		summary.SuccessRate = float64(successes) / float64(attempts)
	}
	summary.P50LatencyMs = percentile(durations, 0.50)
	summary.P95LatencyMs = percentile(durations, 0.95)
	return summary
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
