// Package llm defines the provider-facing LLMClient contract the router
// drives, plus a cached client factory. Individual vendor transports
// (OpenAI-compatible HTTP, DashScope, etc.) are out of this module's
// scope per spec.md §1 — the core only ever sees the LLMClient
// interface below.
package llm

import "context"

// ProviderSpec describes one configured LLM backend. Name is the
// primary key; the capability set is treated as immutable for a run.
type ProviderSpec struct {
	Name         string
	Model        string
	Capabilities []string
	CostInputPer1K  float64
	CostOutputPer1K float64
	BaseURL      string
	APIKeyEnv    string
}

// HasCapability reports whether the provider declares cap.
func (p ProviderSpec) HasCapability(cap string) bool {
	for _, c := range p.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// CompletionRequest is one non-streaming text completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// CompletionResponse is the text returned by a provider, or empty/Text=="" on soft failure.
type CompletionResponse struct {
	Text string
}

// LLMClient is a single-provider text completion adapter: one call in,
// one text-or-failure out. The router never depends on vendor SDKs
// directly.
type LLMClient interface {
	// Complete sends one prompt pair and returns the response. A nil
	// error with an empty Text is a valid "no answer" outcome the
	// router classifies as ReasonLLMNone; it is not itself an error.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Model returns the concrete model identifier this client targets.
	Model() string
}

// ClientFactory resolves or creates LLMClients for a provider+model pair.
type ClientFactory interface {
	GetClient(provider ProviderSpec) (LLMClient, error)
}
