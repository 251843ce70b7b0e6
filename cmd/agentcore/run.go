package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	agenterrors "github.com/cklxx-labs/agentcore/internal/errors"
	"github.com/cklxx-labs/agentcore/internal/router"
	"github.com/cklxx-labs/agentcore/internal/tools"
)

func newRunCommand(p *paths) *cobra.Command {
	var (
		tool      string
		toolArgs  string
		sessionID string
		citation  string
	)

	cmd := &cobra.Command{
		Use:   "run <prompt>",
		Short: "Execute one request through the router and print the resulting payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			engine, _, err := buildEngine(p)
			if err != nil {
				return err
			}

			req := router.AttemptRequest{
				SessionID:  sessionID,
				Tool:       tool,
				UserPrompt: prompt,
				Citation:   citation,
			}

			if tool != "" {
				toolResult, err := runTool(cmd.Context(), p, tool, toolArgs)
				if err != nil {
					return fmt.Errorf("tool %s: %w", tool, err)
				}
				req.ToolUsed = tool
				req.ToolResult = toolResult
			}

			result := engine.Attempt(cmd.Context(), req)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"session_id": sessionID,
				"provider":   result.Provider,
				"model":      result.Model,
				"tried":      result.Tried,
				"payload":    result.Payload,
			})
		},
	}

	cmd.Flags().StringVar(&tool, "tool", "", "name of a tool to execute before routing (its result seeds tool_used/tool_result)")
	cmd.Flags().StringVar(&toolArgs, "tool-args", "{}", "JSON object of arguments for --tool")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to record the timeline under (default: a generated uuid)")
	cmd.Flags().StringVar(&citation, "citation", "", "citation string the output contract must find in payload.citations")

	return cmd
}

// runTool executes one built-in tool ahead of routing, reusing the
// same registry/guardrail wiring validate and explain build against.
// A tool_exec_error result (handler failure normalized to an {"error":
// ...} object) is returned as a value, not a Go error, matching
// tools.Executor's "never crash the router" contract; any other
// non-nil error (unknown tool, argument schema violation) is surfaced
// to the CLI caller directly.
func runTool(ctx context.Context, p *paths, name, argsJSON string) (interface{}, error) {
	cfg, err := loadConfig(p)
	if err != nil {
		return nil, err
	}
	registry := buildToolRegistry(cfg.guardrails)
	executor := tools.NewExecutor(registry)

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, fmt.Errorf("decode --tool-args: %w", err)
	}

	result, reason, err := executor.Execute(ctx, name, args)
	if err != nil && (result == nil || reason == agenterrors.ReasonToolArgInvalid) {
		return nil, err
	}
	return result, nil
}
