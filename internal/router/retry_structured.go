package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	agenterrors "github.com/cklxx-labs/agentcore/internal/errors"
	"github.com/cklxx-labs/agentcore/internal/llm"
	"github.com/cklxx-labs/agentcore/internal/metrics"
	"github.com/cklxx-labs/agentcore/internal/output"
	"github.com/cklxx-labs/agentcore/internal/timeline"
)

// StructuredConfig bounds the structured-answer retry loop.
type StructuredConfig struct {
	MaxRetries  int           // retries after the first attempt (default 2)
	BaseBackoff time.Duration // initial corrective-retry sleep (default 500ms)
	MaxBackoff  time.Duration // sleep ceiling (default 2s)
	Sleep       func(time.Duration)
	Metrics     *metrics.Collector
}

// DefaultStructuredConfig matches spec.md §4.5's literal defaults.
func DefaultStructuredConfig() StructuredConfig {
	return StructuredConfig{
		MaxRetries:  2,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  2 * time.Second,
		Sleep:       time.Sleep,
	}
}

const structuredSystemPromptTemplate = `Respond with JSON only, no prose before or after, conforming exactly to this schema:
%s

The "citations" array must contain the literal string %q.`

// AnswerStructured composes the schema-embedded system prompt, calls
// client.Complete, and coerces the response into a schema-valid Payload
// whose citations contain citation, retrying with a corrective message
// and bounded backoff on parse/validation failure. Returns the first
// valid payload, or a RouterError describing why every attempt failed.
func AnswerStructured(
	ctx context.Context,
	client llm.LLMClient,
	contract *output.Contract,
	schemaJSON string,
	sessionID, userPrompt, citation string,
	cfg StructuredConfig,
	tl *timeline.Writer,
) (*output.Payload, error) {
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	if schemaJSON == "" {
		schemaJSON = output.DefaultSchemaJSON
	}
	systemPrompt := fmt.Sprintf(structuredSystemPromptTemplate, schemaJSON, citation)

	prompt := userPrompt
	backoff := cfg.BaseBackoff
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if tl != nil {
			tl.Emit(sessionID, timeline.EventStructuredAttempt, map[string]interface{}{
				"provider": client.Model(),
				"attempt":  attempt,
			})
		}

		resp, err := client.Complete(ctx, llm.CompletionRequest{SystemPrompt: systemPrompt, UserPrompt: prompt})
		if err != nil {
			return nil, agenterrors.NewRouterError(agenterrors.ReasonLLMNone, err)
		}
		if resp == nil || strings.TrimSpace(resp.Text) == "" {
			return nil, agenterrors.NewRouterError(agenterrors.ReasonLLMNone, fmt.Errorf("provider returned no text"))
		}

		payload, parseErr := parsePayload(resp.Text)
		var valid bool
		if parseErr == nil {
			valid, lastErr = contract.Validate(*payload, citation)
		} else {
			lastErr = parseErr
		}

		if valid {
			if tl != nil {
				tl.Emit(sessionID, timeline.EventStructuredSuccess, map[string]interface{}{
					"provider": client.Model(),
					"attempt":  attempt,
				})
			}
			return payload, nil
		}

		if attempt == cfg.MaxRetries {
			break
		}

		if tl != nil {
			tl.Emit(sessionID, timeline.EventStructuredRetry, map[string]interface{}{
				"provider": client.Model(),
				"attempt":  attempt,
				"reason":   fmt.Sprint(lastErr),
			})
		}
		if cfg.Metrics != nil {
			cfg.Metrics.ObserveStructuredRetry(client.Model())
		}

		prompt = userPrompt + fmt.Sprintf("\n\nYour previous reply was invalid: %v. Reply again with JSON only, matching the schema, and include citation %q in \"citations\".", lastErr, citation)

		cfg.Sleep(backoff)
		backoff *= 2
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return nil, agenterrors.NewRouterError(agenterrors.ReasonSchemaInvalid, lastErr)
}

// parsePayload decodes text into an output.Payload, tolerating a direct
// parse failure by first extracting the substring between the first `{`
// and last `}`, then falling back to jsonrepair for a more thorough fix.
func parsePayload(text string) (*output.Payload, error) {
	if payload, err := unmarshalPayload(text); err == nil {
		return payload, nil
	}

	if start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}'); start >= 0 && end > start {
		if payload, err := unmarshalPayload(text[start : end+1]); err == nil {
			return payload, nil
		}
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, fmt.Errorf("repair json: %w", err)
	}
	return unmarshalPayload(repaired)
}

func unmarshalPayload(text string) (*output.Payload, error) {
	var payload output.Payload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
