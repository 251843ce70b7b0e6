package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaptinlin/jsonrepair"

	agenterrors "github.com/cklxx-labs/agentcore/internal/errors"
	"github.com/cklxx-labs/agentcore/internal/logging"
)

// asyncRetryConfig matches spec.md §4.3's async dispatch rule: up to 3
// attempts, exponential backoff starting at 300ms and doubling (so
// nominally 300ms, then 600ms between the three attempts; 1200ms caps
// any single interval).
var asyncRetryConfig = agenterrors.RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   300 * time.Millisecond,
	MaxDelay:    1200 * time.Millisecond,
}

// Executor validates arguments then dispatches to a tool's handler,
// preferring the async handler (with retry) when one is registered.
type Executor struct {
	registry *Registry
}

// NewExecutor builds an Executor over registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute validates args against the tool's schema, then runs it. A
// schema violation is rejected before any handler runs. Guardrail and
// handler errors never escape as Go errors the caller must crash on:
// they're normalized into {"error": "..."} so the router can keep
// going (spec.md §7's tool_exec_error / tool_guard_denied taxonomy).
func (e *Executor) Execute(ctx context.Context, name string, args map[string]interface{}) (interface{}, agenterrors.ReasonCode, error) {
	tool, ok := e.registry.Get(name)
	if !ok {
		return nil, agenterrors.ReasonToolExecError, fmt.Errorf("tool %q not found", name)
	}

	if err := tool.Schema.Validate(args); err != nil {
		return map[string]interface{}{"error": err.Error()}, agenterrors.ReasonToolArgInvalid, err
	}

	var (
		result interface{}
		err    error
	)
	switch {
	case tool.Async != nil:
		result, err = agenterrors.RetryWithResult(ctx, asyncRetryConfig, func(ctx context.Context) (interface{}, error) {
			return tool.Async(ctx, args)
		})
	case tool.Sync != nil:
		result, err = tool.Sync(ctx, args)
	default:
		return nil, agenterrors.ReasonToolExecError, fmt.Errorf("tool %q has no handler", name)
	}

	if err != nil {
		if guardErr, ok := err.(*ErrGuardDenied); ok {
			return map[string]interface{}{"error": guardErr.Message}, agenterrors.ReasonToolGuardDenied, err
		}
		return map[string]interface{}{"error": err.Error()}, agenterrors.ReasonToolExecError, err
	}
	return result, "", nil
}

// ParseToolCallArguments decodes a tool call's raw JSON arguments,
// falling back to github.com/kaptinlin/jsonrepair when the LLM emitted
// slightly malformed JSON (a common occurrence across providers).
// Grounded on the teacher's tool-call argument parsing in
// internal/agent/tool_executor.go, which tries direct Unmarshal first
// and repairs only on failure.
func ParseToolCallArguments(raw string) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, nil
	}

	fixed, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		logging.ToolLogger.Warn("jsonrepair failed for tool call arguments: %v", repairErr)
		return nil, fmt.Errorf("parse tool arguments: %w", repairErr)
	}
	if err := json.Unmarshal([]byte(fixed), &args); err != nil {
		return nil, fmt.Errorf("parse repaired tool arguments: %w", err)
	}
	return args, nil
}
