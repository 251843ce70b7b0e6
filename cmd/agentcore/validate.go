package main

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/cklxx-labs/agentcore/internal/output"
)

// validateReport is what `agentcore validate` prints: the decode step
// itself is the only hard failure (config.Load* already return an
// error on malformed YAML); everything else is a soft warning, since
// cross-file consistency (e.g. every by_tool entry naming a real
// provider) is the separate Configuration Validator spec.md scopes out.
type validateReport struct {
	RegistryPath   string   `json:"registry_path"`
	RoutingPath    string   `json:"routing_path"`
	GuardrailsPath string   `json:"guardrails_path"`
	Providers      []string `json:"providers"`
	Warnings       []string `json:"warnings"`
	OK             bool     `json:"ok"`
}

func newValidateCommand(p *paths) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Decode and sanity-check the configuration snapshot without attempting any request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(p)
			if err != nil {
				return err
			}

			schemaJSON, err := outputSchemaJSON(p)
			if err != nil {
				return err
			}
			if _, err := output.NewContract(schemaJSON); err != nil {
				return fmt.Errorf("invalid output schema: %w", err)
			}

			report := validateReport{
				RegistryPath:   p.registryPath(),
				RoutingPath:    p.routingPath(),
				GuardrailsPath: p.guardrailsPath(),
				OK:             true,
			}
			for name := range cfg.registry.Providers {
				report.Providers = append(report.Providers, name)
			}

			if cfg.registry.DefaultProvider != "" {
				if _, ok := cfg.registry.Providers[cfg.registry.DefaultProvider]; !ok {
					report.Warnings = append(report.Warnings, fmt.Sprintf("default_provider %q is not declared in registry", cfg.registry.DefaultProvider))
				}
			}

			if cfg.routing.Strategy.Type == "weighted" && len(cfg.routing.Strategy.Weights) > 0 {
				if sum := cfg.routing.Strategy.WeightSum(); math.Abs(sum-1.0) > 0.01 {
					report.Warnings = append(report.Warnings, fmt.Sprintf("strategy weights sum to %.3f, expected ~1.0", sum))
				}
			}

			for _, chain := range [][]string{cfg.routing.FallbackChain} {
				for _, name := range chain {
					if _, ok := cfg.registry.Providers[name]; !ok {
						report.Warnings = append(report.Warnings, fmt.Sprintf("fallback_chain references unknown provider %q", name))
					}
				}
			}
			for tool, chain := range cfg.routing.TaskRouting.ByTool {
				for _, name := range chain {
					if _, ok := cfg.registry.Providers[name]; !ok {
						report.Warnings = append(report.Warnings, fmt.Sprintf("task_routing.by_tool[%s] references unknown provider %q", tool, name))
					}
				}
			}
			for tool, chain := range cfg.routing.TaskRouting.FallbackChain {
				for _, name := range chain {
					if _, ok := cfg.registry.Providers[name]; !ok {
						report.Warnings = append(report.Warnings, fmt.Sprintf("task_routing.fallback_chain[%s] references unknown provider %q", tool, name))
					}
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	return cmd
}
