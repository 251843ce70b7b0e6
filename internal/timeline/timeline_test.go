package timeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cklxx-labs/agentcore/internal/breaker"
	"github.com/cklxx-labs/agentcore/internal/clock"
	"github.com/cklxx-labs/agentcore/internal/llm"
	"github.com/cklxx-labs/agentcore/internal/policy"
)

func TestWriter_AppendsToGlobalAndSessionLogs(t *testing.T) {
	dir := t.TempDir()
	globalPath := filepath.Join(dir, "poc_timeline.log")
	sessionDir := filepath.Join(dir, "sessions")
	fc := clock.NewFake(time.Unix(1700000000, 0))
	w := NewWriter(globalPath, sessionDir, fc)

	w.Emit("sess-1", EventProviderAttempt, map[string]interface{}{"provider": "openai"})
	w.EmitDuration("sess-1", EventProviderSuccess, map[string]interface{}{"provider": "openai"}, 123.5)

	globalEvents, err := ReadSessionEvents(globalPath)
	if err != nil {
		t.Fatalf("ReadSessionEvents(global): %v", err)
	}
	if len(globalEvents) != 2 {
		t.Fatalf("expected 2 global events, got %d", len(globalEvents))
	}

	sessionEvents, err := ReadSessionEvents(filepath.Join(sessionDir, "sess-1.jsonl"))
	if err != nil {
		t.Fatalf("ReadSessionEvents(session): %v", err)
	}
	if len(sessionEvents) != 2 {
		t.Fatalf("expected 2 session events, got %d", len(sessionEvents))
	}
	if sessionEvents[1].DurationMs == nil || *sessionEvents[1].DurationMs != 123.5 {
		t.Errorf("expected duration_ms=123.5 to round-trip, got %+v", sessionEvents[1].DurationMs)
	}
	if !sessionEvents[0].Timestamp.Equal(fc.Now().UTC()) {
		t.Errorf("expected timestamp from injected clock, got %v", sessionEvents[0].Timestamp)
	}
}

func TestReadSessionEvents_MissingFile(t *testing.T) {
	if _, err := ReadSessionEvents("/nonexistent/path.jsonl"); err == nil {
		t.Fatalf("expected error reading a missing file")
	}
	_ = os.TempDir
}

func TestExplain_AggregatesPerProviderAndCircuitState(t *testing.T) {
	events := []Event{
		{SessionID: "s1", Event: EventProviderAttempt, Details: map[string]interface{}{"provider": "p1"}},
		{SessionID: "s1", Event: EventProviderFailed, Details: map[string]interface{}{"provider": "p1"}},
		{SessionID: "s1", Event: EventProviderAttempt, Details: map[string]interface{}{"provider": "p2"}},
		{SessionID: "s1", Event: EventProviderSuccess, Details: map[string]interface{}{"provider": "p2"}},
		{SessionID: "other", Event: EventProviderSuccess, Details: map[string]interface{}{"provider": "p1"}},
	}

	providers := map[string]llm.ProviderSpec{
		"p1": {Name: "p1", Capabilities: []string{"chat"}},
		"p2": {Name: "p2", Capabilities: []string{"chat"}},
	}
	gate := policy.NewGate()
	breakers := breaker.NewManager(breaker.DefaultConfig(), clock.NewFake(time.Unix(0, 0)))
	breakers.Get("p1").RecordFailure()

	explanation := Explain(events, "s1", "calc", []string{"p1", "p2"}, policy.Policy{}, providers, gate, breakers, 1000)

	if len(explanation.Providers) != 2 {
		t.Fatalf("expected 2 provider summaries, got %d", len(explanation.Providers))
	}
	if explanation.Providers[0].Provider != "p1" || explanation.Providers[0].Failures != 1 {
		t.Errorf("expected p1 first with 1 failure, got %+v", explanation.Providers[0])
	}
	if explanation.Providers[1].Successes != 1 {
		t.Errorf("expected p2 with 1 success, got %+v", explanation.Providers[1])
	}
	if !explanation.Providers[0].PolicyAllows {
		t.Errorf("expected p1 to be policy-allowed with no required capabilities")
	}
}

func TestSummarize_ComputesSuccessRateAndLatencyPercentiles(t *testing.T) {
	d := func(ms float64) *float64 { return &ms }
	events := []Event{
		{Event: EventProviderAttempt},
		{Event: EventProviderFailed, DurationMs: d(100)},
		{Event: EventProviderAttempt},
		{Event: EventProviderSuccess, DurationMs: d(200)},
	}

	summary := Summarize(events)
	if summary.EventCount != 4 {
		t.Errorf("expected event count 4, got %d", summary.EventCount)
	}
	if summary.SuccessRate != 0.5 {
		t.Errorf("expected success rate 0.5, got %v", summary.SuccessRate)
	}
	if summary.P50LatencyMs != 100 && summary.P50LatencyMs != 200 {
		t.Errorf("expected p50 to be one of the two samples, got %v", summary.P50LatencyMs)
	}
}

func TestSummarize_EmptyEventsIsZeroValue(t *testing.T) {
	summary := Summarize(nil)
	if summary.EventCount != 0 || summary.SuccessRate != 0 {
		t.Errorf("expected zero-value summary for no events, got %+v", summary)
	}
}
