// Package breaker implements a per-provider circuit breaker: a
// consecutive-failure counter that trips a provider to "open" for a
// cooldown window, then admits exactly one half-open probe before
// deciding whether to close or reopen.
package breaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/cklxx-labs/agentcore/internal/clock"
	"github.com/cklxx-labs/agentcore/internal/config"
	"github.com/cklxx-labs/agentcore/internal/errors"
	"github.com/cklxx-labs/agentcore/internal/logging"
)

// State is one of closed/open/half-open.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config controls when a breaker trips and how long it stays open.
type Config struct {
	FailureThreshold int
	Cooldown         time.Duration
}

// DefaultConfig matches the spec's default envelope: open after 5
// consecutive failures, half-open after 30s.
func DefaultConfig() Config {
	return Config{FailureThreshold: 5, Cooldown: 30 * time.Second}
}

// Breaker tracks the circuit state for a single provider. The half-open
// state admits exactly one probe: SuccessThreshold is fixed at 1 rather
// than configurable, per this module's reading of the spec's
// half-open-admits-one-probe behavior.
type Breaker struct {
	name   string
	config Config
	clock  clock.Clock
	logger logging.Logger

	mu              sync.Mutex
	state           State
	failureCount    int
	halfOpenInUse   bool
	lastFailureTime time.Time
	lastStateChange time.Time
}

func newBreaker(name string, cfg Config, c clock.Clock) *Breaker {
	now := c.Now()
	return &Breaker{
		name:            name,
		config:          cfg,
		clock:           c,
		logger:          logging.BreakerLogger,
		state:           StateClosed,
		lastStateChange: now,
	}
}

// ShouldSkip reports whether the provider should be skipped this round,
// and transitions open->half-open once the cooldown has elapsed.
func (b *Breaker) ShouldSkip() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return false

	case StateOpen:
		if b.clock.Now().Sub(b.lastFailureTime) >= b.config.Cooldown {
			b.setState(StateHalfOpen)
			b.halfOpenInUse = true
			b.logger.Info("[%s] circuit transitioning to half-open", b.name)
			return false
		}
		return true

	case StateHalfOpen:
		// Admit exactly one probe at a time.
		if b.halfOpenInUse {
			return true
		}
		b.halfOpenInUse = true
		return false

	default:
		return false
	}
}

// RecordSuccess closes the circuit (from closed, it just clears the
// failure count; from half-open, the probe passed so it closes fully).
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		b.setState(StateClosed)
		b.failureCount = 0
		b.halfOpenInUse = false
		b.logger.Info("[%s] circuit closed (probe succeeded)", b.name)
	}
}

// RecordFailure records a failed attempt, opening the circuit once the
// failure threshold is reached (closed) or immediately (half-open).
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureTime = b.clock.Now()

	switch b.state {
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.config.FailureThreshold {
			b.setState(StateOpen)
			b.logger.Warn("[%s] circuit opened after %d consecutive failures", b.name, b.failureCount)
		}
	case StateHalfOpen:
		b.setState(StateOpen)
		b.halfOpenInUse = false
		b.logger.Warn("[%s] circuit reopened (probe failed)", b.name)
	case StateOpen:
		// already open, nothing to do beyond the timestamp update above
	}
}

// UpdateConfig applies a (possibly tool-overridden) threshold/cooldown
// to an already-created breaker. State and failure count are untouched
// — only future trip/cooldown decisions use the new config — since the
// breaker's memory of past attempts is shared across whichever policy
// happened to be in effect at the time.
func (b *Breaker) UpdateConfig(cfg Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.config = cfg
}

func (b *Breaker) setState(s State) {
	b.state = s
	b.lastStateChange = b.clock.Now()
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SkipError builds the degraded error surfaced to a caller that was
// denied an attempt because the breaker is open.
func (b *Breaker) SkipError() error {
	b.mu.Lock()
	remaining := b.config.Cooldown - b.clock.Now().Sub(b.lastFailureTime)
	name := b.name
	b.mu.Unlock()
	if remaining < 0 {
		remaining = 0
	}
	return errors.NewDegradedError(
		fmt.Errorf("circuit breaker open for %s", name),
		fmt.Sprintf("provider %q is temporarily skipped after repeated failures; retrying in %v", name, remaining),
		"",
	)
}

// Manager holds one Breaker per provider, created lazily. It is the one
// intentionally process-wide piece of mutable state in this module: a
// circuit breaker's whole purpose is to remember failures across
// otherwise-independent calls.
type Manager struct {
	mu       sync.RWMutex
	clock    clock.Clock
	config   Config
	breakers map[string]*Breaker
}

// NewManager builds a Manager using cfg for any breaker it creates.
func NewManager(cfg Config, c clock.Clock) *Manager {
	if c == nil {
		c = clock.System{}
	}
	return &Manager{
		clock:    c,
		config:   cfg,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the Breaker for provider, creating one on first use.
func (m *Manager) Get(provider string) *Breaker {
	m.mu.RLock()
	if b, ok := m.breakers[provider]; ok {
		m.mu.RUnlock()
		return b
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.breakers[provider]; ok {
		return b
	}
	b := newBreaker(provider, m.config, m.clock)
	m.breakers[provider] = b
	return b
}

// GetForPolicy returns the Breaker for provider, creating it (under the
// manager's default config) on first use. On every call it applies cb
// — the effective policy's circuit_breaker knob for this (tool,
// session), shallow-merged over the manager's default — per spec.md
// §4.4 ("threshold and cooldown come from the effective policy") and
// §3's tool-overlays-global merge rule. A zero CircuitPolicy field
// leaves the manager's default for that field untouched.
func (m *Manager) GetForPolicy(provider string, cb config.CircuitPolicy) *Breaker {
	cfg := m.config
	if cb.FailureThreshold > 0 {
		cfg.FailureThreshold = cb.FailureThreshold
	}
	if cb.CooldownSeconds > 0 {
		cfg.Cooldown = time.Duration(cb.CooldownSeconds * float64(time.Second))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.breakers[provider]
	if !ok {
		b = newBreaker(provider, cfg, m.clock)
		m.breakers[provider] = b
		return b
	}
	b.UpdateConfig(cfg)
	return b
}

// Reset clears every tracked breaker back to closed.
func (m *Manager) Reset() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.breakers {
		b.mu.Lock()
		b.state = StateClosed
		b.failureCount = 0
		b.halfOpenInUse = false
		b.lastStateChange = m.clock.Now()
		b.mu.Unlock()
	}
}
