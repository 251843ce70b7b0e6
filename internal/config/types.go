// Package config loads the routing core's read-only configuration
// snapshot: the provider registry, the routing policy document, and the
// tool guardrail knobs. Cross-file validation (consistency between
// registry providers and routing references, etc.) is the separate,
// out-of-scope Configuration Validator; this package only decodes each
// file into structs.
package config

// Cost holds per-1k-token pricing for a provider.
type Cost struct {
	InputPer1KTokensUSD  float64 `yaml:"input_per_1k_tokens_usd"`
	OutputPer1KTokensUSD float64 `yaml:"output_per_1k_tokens_usd"`
}

// ProviderConfig is one entry of models/registry.yaml.
type ProviderConfig struct {
	Model        string   `yaml:"model"`
	Capabilities []string `yaml:"capabilities"`
	Cost         Cost     `yaml:"cost"`
	APIKeyEnv    string   `yaml:"api_key_env"`
	BaseURL      string   `yaml:"base_url"`
}

// Registry is the decoded models/registry.yaml document.
type Registry struct {
	DefaultProvider string                    `yaml:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers"`
}

// Policy is the effective set of numeric/boolean predicates governing one
// request, mirroring spec.md's Policy entity exactly.
type Policy struct {
	MaxLatencyMs           *float64       `yaml:"max_latency_ms"`
	MaxLatencyMsTotal      *float64       `yaml:"max_latency_ms_total"`
	MaxCostUSDPerRequest   *float64       `yaml:"max_cost_usd_per_request"`
	RequiredCapabilities   []string       `yaml:"required_capabilities"`
	OnSLATimeout           string         `yaml:"on_sla_timeout"` // "degrade" | "abort"
	CircuitBreaker         CircuitPolicy  `yaml:"circuit_breaker"`
}

// CircuitPolicy configures a provider's breaker thresholds.
type CircuitPolicy struct {
	FailureThreshold int     `yaml:"failure_threshold"`
	CooldownSeconds  float64 `yaml:"cooldown_seconds"`
}

// Strategy is the routing.yaml top-level selection strategy.
type Strategy struct {
	Type    string             `yaml:"type"`
	Weights map[string]float64 `yaml:"weights"`
}

// TaskRouting holds per-tool routing overrides.
type TaskRouting struct {
	ByTool        map[string][]string `yaml:"by_tool"`
	FallbackChain map[string][]string `yaml:"fallback_chain"`
	Policies      map[string]Policy   `yaml:"policies"`
}

// Routing is the decoded routing.yaml document.
type Routing struct {
	Strategy      Strategy    `yaml:"strategy"`
	FallbackChain []string    `yaml:"fallback_chain"`
	Policies      Policy      `yaml:"policies"`
	TaskRouting   TaskRouting `yaml:"task_routing"`
}

// RunCommandGuard configures the run_command tool's shell guardrail.
type RunCommandGuard struct {
	Allowlist        []string `yaml:"allowlist"`
	Denylist         []string `yaml:"denylist"`
	MaxTimeoutSeconds int     `yaml:"max_timeout_seconds"`
}

// FileWriteGuard configures the file_write tool's guardrail.
type FileWriteGuard struct {
	AllowedBaseDir string `yaml:"allowed_base_dir"`
	MaxBytes       int    `yaml:"max_bytes"`
}

// ListDirGuard configures the list_dir tool's guardrail.
type ListDirGuard struct {
	AllowedBaseDir string `yaml:"allowed_base_dir"`
}

// WebSearchGuard configures the web_search tool's rate limit and result cap.
type WebSearchGuard struct {
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	MaxLimit           int `yaml:"max_limit"`
}

// OpenAppGuard configures the open_app tool's allow-list.
type OpenAppGuard struct {
	Allowlist []string `yaml:"allowlist"`
}

// FileReadGuard configures the file_read tool's guardrail.
type FileReadGuard struct {
	AllowedBaseDir string `yaml:"allowed_base_dir"`
}

// Guardrails is the decoded policies/guardrails.yaml document.
type Guardrails struct {
	Tools struct {
		RunCommand RunCommandGuard `yaml:"run_command"`
		FileWrite  FileWriteGuard  `yaml:"file_write"`
		FileRead   FileReadGuard   `yaml:"file_read"`
		ListDir    ListDirGuard    `yaml:"list_dir"`
		WebSearch  WebSearchGuard  `yaml:"web_search"`
		OpenApp    OpenAppGuard    `yaml:"open_app"`
	} `yaml:"tools"`
}
