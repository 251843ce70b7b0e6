package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "registry.yaml", `
default_provider: qwen
providers:
  qwen:
    model: qwen-max
    capabilities: [code, reasoning]
    cost:
      input_per_1k_tokens_usd: 0.001
      output_per_1k_tokens_usd: 0.002
    api_key_env: QWEN_API_KEY
  claude:
    model: claude-3-5-sonnet
    capabilities: [code, reasoning, vision]
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if reg.DefaultProvider != "qwen" {
		t.Errorf("DefaultProvider = %q, want qwen", reg.DefaultProvider)
	}
	if len(reg.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(reg.Providers))
	}
	if reg.Providers["qwen"].Cost.InputPer1KTokensUSD != 0.001 {
		t.Errorf("unexpected cost: %+v", reg.Providers["qwen"].Cost)
	}
}

func TestLoadRouting_MissingFileDefaultsToWeighted(t *testing.T) {
	routing, err := LoadRouting(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if routing.Strategy.Type != "weighted" {
		t.Errorf("expected weighted fallback, got %q", routing.Strategy.Type)
	}
}

func TestLoadRouting_DecodesTaskRouting(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "routing.yaml", `
strategy:
  type: weighted
  weights:
    qwen: 0.6
    claude: 0.4
fallback_chain: [qwen, claude]
policies:
  max_latency_ms: 5000
  max_latency_ms_total: 20000
  on_sla_timeout: abort
task_routing:
  by_tool:
    calc: [claude]
  fallback_chain:
    search: [qwen, claude]
  policies:
    calc:
      max_latency_ms: 2000
`)

	routing, err := LoadRouting(path)
	if err != nil {
		t.Fatalf("LoadRouting: %v", err)
	}
	if got := routing.Strategy.WeightSum(); got < 0.99 || got > 1.01 {
		t.Errorf("WeightSum = %f, want ~1.0", got)
	}
	if len(routing.TaskRouting.ByTool["calc"]) != 1 || routing.TaskRouting.ByTool["calc"][0] != "claude" {
		t.Errorf("unexpected by_tool: %+v", routing.TaskRouting.ByTool)
	}
	if routing.TaskRouting.Policies["calc"].MaxLatencyMs == nil || *routing.TaskRouting.Policies["calc"].MaxLatencyMs != 2000 {
		t.Errorf("unexpected tool policy: %+v", routing.TaskRouting.Policies["calc"])
	}
}

func TestLoadGuardrails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guardrails.yaml", `
tools:
  run_command:
    allowlist: [echo, ls]
    denylist: [rm]
    max_timeout_seconds: 10
  file_write:
    allowed_base_dir: data
    max_bytes: 50000
  web_search:
    rate_limit_per_minute: 10
    max_limit: 20
`)

	gr, err := LoadGuardrails(path)
	if err != nil {
		t.Fatalf("LoadGuardrails: %v", err)
	}
	if gr.Tools.RunCommand.MaxTimeoutSeconds != 10 {
		t.Errorf("unexpected run_command guard: %+v", gr.Tools.RunCommand)
	}
	if gr.Tools.WebSearch.RateLimitPerMinute != 10 {
		t.Errorf("unexpected web_search guard: %+v", gr.Tools.WebSearch)
	}
}
