package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cklxx-labs/agentcore/internal/breaker"
	"github.com/cklxx-labs/agentcore/internal/clock"
	"github.com/cklxx-labs/agentcore/internal/config"
	"github.com/cklxx-labs/agentcore/internal/llm"
	"github.com/cklxx-labs/agentcore/internal/metrics"
	"github.com/cklxx-labs/agentcore/internal/output"
	"github.com/cklxx-labs/agentcore/internal/router"
	"github.com/cklxx-labs/agentcore/internal/timeline"
	"github.com/prometheus/client_golang/prometheus"
)

// loadedConfig is the decoded configuration snapshot every subcommand
// that touches routing needs; validate only needs the decode step
// itself, so it builds this directly rather than going through
// buildEngine.
type loadedConfig struct {
	registry   config.Registry
	routing    config.Routing
	guardrails config.Guardrails
}

func loadConfig(p *paths) (loadedConfig, error) {
	registry, err := config.LoadRegistry(p.registryPath())
	if err != nil {
		return loadedConfig{}, fmt.Errorf("load %s: %w", p.registryPath(), err)
	}
	routing, err := config.LoadRouting(p.routingPath())
	if err != nil {
		return loadedConfig{}, fmt.Errorf("load %s: %w", p.routingPath(), err)
	}
	guardrails, err := config.LoadGuardrails(p.guardrailsPath())
	if err != nil {
		return loadedConfig{}, fmt.Errorf("load %s: %w", p.guardrailsPath(), err)
	}
	return loadedConfig{registry: registry, routing: routing, guardrails: guardrails}, nil
}

// outputSchemaJSON returns the configured schema document, or an empty
// string (telling output.NewContract to use its built-in default) when
// no override file is present.
func outputSchemaJSON(p *paths) (string, error) {
	data, err := os.ReadFile(p.outputSchemaPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", p.outputSchemaPath(), err)
	}
	return string(data), nil
}

// breakerConfig converts a decoded Policy's circuit_breaker knob into
// breaker.Config, falling back to breaker.DefaultConfig when unset.
func breakerConfig(pol config.Policy) breaker.Config {
	cfg := breaker.DefaultConfig()
	if pol.CircuitBreaker.FailureThreshold > 0 {
		cfg.FailureThreshold = pol.CircuitBreaker.FailureThreshold
	}
	if pol.CircuitBreaker.CooldownSeconds > 0 {
		cfg.Cooldown = time.Duration(pol.CircuitBreaker.CooldownSeconds * float64(time.Second))
	}
	return cfg
}

// buildEngine wires a fresh router.Engine for one CLI invocation: every
// breaker starts closed, every metric starts at zero, since the CLI is
// a one-shot process with no resident state between runs (persisted
// state is the event timeline, not in-memory breaker/metric counters).
func buildEngine(p *paths) (*router.Engine, *timeline.Writer, error) {
	cfg, err := loadConfig(p)
	if err != nil {
		return nil, nil, err
	}
	schemaJSON, err := outputSchemaJSON(p)
	if err != nil {
		return nil, nil, err
	}
	contract, err := output.NewContract(schemaJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("build output contract: %w", err)
	}

	tl := timeline.NewWriter(p.globalLogPath(), p.sessionLogDir(), clock.System{})
	factory := llm.NewFactory(newHTTPClient)
	breakers := breaker.NewManager(breakerConfig(cfg.routing.Policies), clock.System{})
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	engine := router.NewEngine(cfg.registry, cfg.routing, factory, breakers, contract)
	engine.Timeline = tl
	engine.Metrics = collector

	return engine, tl, nil
}
