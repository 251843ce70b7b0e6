package breaker

import (
	"strings"
	"testing"
	"time"

	"github.com/cklxx-labs/agentcore/internal/clock"
	"github.com/cklxx-labs/agentcore/internal/config"
)

func TestBreaker_OpensAfterThresholdThenSkips(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := NewManager(Config{FailureThreshold: 3, Cooldown: time.Minute}, fc)
	b := m.Get("qwen")

	for i := 0; i < 2; i++ {
		if b.ShouldSkip() {
			t.Fatalf("attempt %d: should not skip before threshold reached", i)
		}
		b.RecordFailure()
	}
	if b.State() != StateClosed {
		t.Fatalf("expected still closed after 2 failures, got %s", b.State())
	}

	if b.ShouldSkip() {
		t.Fatalf("3rd attempt should still be admitted")
	}
	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatalf("expected open after 3rd failure, got %s", b.State())
	}

	if !b.ShouldSkip() {
		t.Fatalf("expected subsequent attempts to be skipped while open")
	}
}

func TestBreaker_HalfOpenAdmitsOneProbeAndCloses(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := NewManager(Config{FailureThreshold: 1, Cooldown: 10 * time.Second}, fc)
	b := m.Get("qwen")

	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatalf("expected open after single failure threshold, got %s", b.State())
	}
	if !b.ShouldSkip() {
		t.Fatalf("expected skip before cooldown elapses")
	}

	fc.Advance(11 * time.Second)
	if b.ShouldSkip() {
		t.Fatalf("expected half-open probe to be admitted after cooldown")
	}
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half-open, got %s", b.State())
	}

	// A second concurrent caller must not get another probe.
	if !b.ShouldSkip() {
		t.Fatalf("expected second half-open attempt to be skipped while a probe is in flight")
	}

	b.RecordSuccess()
	if b.State() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %s", b.State())
	}
	if b.ShouldSkip() {
		t.Fatalf("expected closed breaker to admit requests")
	}
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := NewManager(Config{FailureThreshold: 1, Cooldown: time.Second}, fc)
	b := m.Get("claude")

	b.RecordFailure()
	fc.Advance(2 * time.Second)
	if b.ShouldSkip() {
		t.Fatalf("expected probe to be admitted")
	}
	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatalf("expected reopened after failed probe, got %s", b.State())
	}
	if !b.ShouldSkip() {
		t.Fatalf("expected immediate skip right after reopening")
	}
}

func TestBreaker_SkipErrorReportsRemainingCooldown(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := NewManager(Config{FailureThreshold: 1, Cooldown: time.Minute}, fc)
	b := m.Get("qwen")
	b.RecordFailure()

	err := b.SkipError()
	if err == nil {
		t.Fatalf("expected a skip error")
	}
	if !strings.Contains(err.Error(), "retrying in 1m0s") {
		t.Fatalf("expected skip error to report the remaining cooldown, got %q", err.Error())
	}
}

func TestManager_TracksBreakersIndependentlyPerProvider(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := NewManager(Config{FailureThreshold: 1, Cooldown: time.Minute}, fc)

	m.Get("qwen").RecordFailure()
	if m.Get("qwen").State() != StateOpen {
		t.Fatalf("expected qwen open")
	}
	if m.Get("claude").State() != StateClosed {
		t.Fatalf("expected claude unaffected by qwen's failures")
	}
}

func TestManager_GetForPolicyHonorsToolOverride(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := NewManager(Config{FailureThreshold: 5, Cooldown: 30 * time.Second}, fc)

	// A tool-level override of failure_threshold=1 must open the
	// breaker after exactly one failure, not the manager's default 5.
	b := m.GetForPolicy("qwen", config.CircuitPolicy{FailureThreshold: 1})
	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatalf("expected override threshold=1 to open after one failure, got %v", b.State())
	}
}

func TestManager_GetForPolicyReturnsSameBreakerAcrossCalls(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := NewManager(DefaultConfig(), fc)

	b1 := m.GetForPolicy("qwen", config.CircuitPolicy{})
	b1.RecordFailure()
	b2 := m.GetForPolicy("qwen", config.CircuitPolicy{FailureThreshold: 10})
	if b1 != b2 {
		t.Fatalf("expected the same breaker instance across GetForPolicy calls")
	}
	if m.Get("qwen") != b1 {
		t.Fatalf("expected Get and GetForPolicy to share one breaker per provider")
	}
}

func TestManager_Reset(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := NewManager(Config{FailureThreshold: 1, Cooldown: time.Minute}, fc)
	m.Get("qwen").RecordFailure()
	m.Reset()
	if m.Get("qwen").State() != StateClosed {
		t.Fatalf("expected reset to close all breakers")
	}
}
