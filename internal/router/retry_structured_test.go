package router

import (
	"context"
	"testing"
	"time"

	"github.com/cklxx-labs/agentcore/internal/llm"
	"github.com/cklxx-labs/agentcore/internal/output"
)

func noSleepConfig() StructuredConfig {
	cfg := DefaultStructuredConfig()
	cfg.Sleep = func(time.Duration) {}
	return cfg
}

func mustContract(t *testing.T) *output.Contract {
	t.Helper()
	c, err := output.NewContract("")
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	return c
}

func TestAnswerStructured_ReturnsFirstValidPayload(t *testing.T) {
	client := llm.NewMockClient("p1", llm.MockResponse{
		Text: `{"answer":"结果为46","citations":["ref"],"tool_used":"calc","tool_result":{"result":46.0}}`,
	})
	payload, err := AnswerStructured(context.Background(), client, mustContract(t), "", "s1", "what is 40+6", "ref", noSleepConfig(), nil)
	if err != nil {
		t.Fatalf("AnswerStructured: %v", err)
	}
	if payload.Answer != "结果为46" {
		t.Errorf("unexpected answer: %q", payload.Answer)
	}
}

func TestAnswerStructured_EmptyResponseIsLLMNoneWithNoRetry(t *testing.T) {
	client := llm.NewMockClient("p1", llm.MockResponse{Text: ""})
	_, err := AnswerStructured(context.Background(), client, mustContract(t), "", "s1", "prompt", "ref", noSleepConfig(), nil)
	if err == nil {
		t.Fatalf("expected llm_none error")
	}
	if client.CallCount() != 1 {
		t.Errorf("expected exactly one call for an empty response, got %d", client.CallCount())
	}
}

func TestAnswerStructured_RetriesOnMissingCitationThenSucceeds(t *testing.T) {
	client := llm.NewMockClient("p1",
		llm.MockResponse{Text: `{"answer":"partial","citations":[],"tool_used":null,"tool_result":null}`},
		llm.MockResponse{Text: `{"answer":"ok","citations":["ref"],"tool_used":null,"tool_result":null}`},
	)
	payload, err := AnswerStructured(context.Background(), client, mustContract(t), "", "s1", "prompt", "ref", noSleepConfig(), nil)
	if err != nil {
		t.Fatalf("AnswerStructured: %v", err)
	}
	if payload.Answer != "ok" {
		t.Errorf("expected corrected payload, got %q", payload.Answer)
	}
	if client.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", client.CallCount())
	}
}

func TestAnswerStructured_ExhaustsRetriesAndReturnsError(t *testing.T) {
	client := llm.NewMockClient("p1", llm.MockResponse{Text: `not json at all`})
	cfg := noSleepConfig()
	cfg.MaxRetries = 1
	_, err := AnswerStructured(context.Background(), client, mustContract(t), "", "s1", "prompt", "ref", cfg, nil)
	if err == nil {
		t.Fatalf("expected schema_invalid error after exhausting retries")
	}
	if client.CallCount() != 2 {
		t.Errorf("expected MaxRetries+1=2 calls, got %d", client.CallCount())
	}
}

func TestAnswerStructured_ExtractsJSONFromSurroundingProse(t *testing.T) {
	client := llm.NewMockClient("p1", llm.MockResponse{
		Text: "here is my answer: " + `{"answer":"ok","citations":["ref"],"tool_used":null,"tool_result":null}` + " hope that helps",
	})
	payload, err := AnswerStructured(context.Background(), client, mustContract(t), "", "s1", "prompt", "ref", noSleepConfig(), nil)
	if err != nil {
		t.Fatalf("AnswerStructured: %v", err)
	}
	if payload.Answer != "ok" {
		t.Errorf("expected tolerant extraction to recover the payload, got %q", payload.Answer)
	}
}
