package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cklxx-labs/agentcore/internal/policy"
	"github.com/cklxx-labs/agentcore/internal/router"
	"github.com/cklxx-labs/agentcore/internal/timeline"
)

func newExplainCommand(p *paths) *cobra.Command {
	var tool string

	cmd := &cobra.Command{
		Use:   "explain <session-id>",
		Short: "Show the candidate list, effective policy, and per-provider state a session was routed under",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]

			engine, _, err := buildEngine(p)
			if err != nil {
				return err
			}

			events, err := timeline.ReadSessionEvents(p.sessionLogDir() + "/" + sessionID + ".jsonl")
			if err != nil {
				return fmt.Errorf("read session %s: %w", sessionID, err)
			}

			candidates := router.SelectCandidates(router.EnvOverride(), tool, engine.Routing, engine.Registry, engine.Providers)
			names := make([]string, len(candidates))
			for i, c := range candidates {
				names[i] = c.Name
			}

			effPolicy := policy.FromConfig(engine.Routing.Policies)
			if tool != "" {
				if override, ok := engine.Routing.TaskRouting.Policies[tool]; ok {
					overridden := policy.FromConfig(override)
					effPolicy = policy.ResolveEffectivePolicy(effPolicy, &overridden)
				}
			}

			estTokens := policy.EstimateTokens("")
			explanation := timeline.Explain(events, sessionID, tool, names, effPolicy, engine.Providers, engine.Gate, engine.Breakers, estTokens)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(explanation)
		},
	}

	cmd.Flags().StringVar(&tool, "tool", "", "tool whose routing rule and policy override to explain")
	return cmd
}
