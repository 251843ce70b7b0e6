package tools

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cklxx-labs/agentcore/internal/clock"
	"github.com/cklxx-labs/agentcore/internal/config"
)

// ErrGuardDenied marks a guardrail rejection, distinct from a tool's own
// execution error.
type ErrGuardDenied struct {
	Kind    string // "shell not allowed" | "command denied" | "timeout" | "path not allowed" | "rate limited" | "payload too large"
	Message string
}

func (e *ErrGuardDenied) Error() string { return e.Message }

func denied(kind, format string, args ...interface{}) *ErrGuardDenied {
	return &ErrGuardDenied{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// CheckShellCommand enforces the run_command allow/deny-list and
// returns the bounded timeout to apply, or a guard error.
func CheckShellCommand(guard config.RunCommandGuard, command string, requestedTimeoutSeconds int) (time.Duration, error) {
	if len(guard.Denylist) > 0 {
		for _, d := range guard.Denylist {
			if d != "" && strings.Contains(command, d) {
				return 0, denied("command denied", "command denied: matches denylist entry %q", d)
			}
		}
	}
	if len(guard.Allowlist) > 0 {
		allowed := false
		for _, a := range guard.Allowlist {
			if a != "" && strings.HasPrefix(strings.TrimSpace(command), a) {
				allowed = true
				break
			}
		}
		if !allowed {
			return 0, denied("shell not allowed", "shell command %q is not in the allowlist", command)
		}
	}

	timeout := requestedTimeoutSeconds
	if guard.MaxTimeoutSeconds > 0 && (timeout <= 0 || timeout > guard.MaxTimeoutSeconds) {
		timeout = guard.MaxTimeoutSeconds
	}
	if timeout <= 0 {
		timeout = 5
	}
	return time.Duration(timeout) * time.Second, nil
}

// ResolveConfinedPath resolves path against baseDir and rejects any
// result that escapes it, per spec.md's "write is confined to an
// allowed base directory" invariant. Never touches the filesystem: a
// rejected path leaves no trace, satisfying the spec's "violations
// return path not allowed without modifying the filesystem" property.
func ResolveConfinedPath(baseDir, path string) (string, error) {
	if baseDir == "" {
		return path, nil
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base dir: %w", err)
	}
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(absBase, candidate)
	}
	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	rel, err := filepath.Rel(absBase, absCandidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", denied("path not allowed", "path %q escapes allowed base directory %q", path, baseDir)
	}
	return absCandidate, nil
}

// CheckWriteSize enforces file_write's max byte ceiling.
func CheckWriteSize(guard config.FileWriteGuard, payloadSize int) error {
	if guard.MaxBytes > 0 && payloadSize > guard.MaxBytes {
		return denied("payload too large", "write of %d bytes exceeds max_bytes=%d", payloadSize, guard.MaxBytes)
	}
	return nil
}

// SearchRateLimiter enforces web_search's sliding 60-second window.
// Kept as its own hand-rolled admission check (not
// golang.org/x/time/rate): the guard's semantics are "count requests in
// the trailing 60s", a sliding window, not a refilling token bucket —
// see SPEC_FULL.md §4.3 on why x/time/rate doesn't fit here.
type SearchRateLimiter struct {
	mu         sync.Mutex
	clock      clock.Clock
	limit      int
	window     time.Duration
	timestamps []time.Time
}

// NewSearchRateLimiter builds a limiter admitting at most limit calls
// per 60-second sliding window.
func NewSearchRateLimiter(guard config.WebSearchGuard, c clock.Clock) *SearchRateLimiter {
	if c == nil {
		c = clock.System{}
	}
	limit := guard.RateLimitPerMinute
	if limit <= 0 {
		limit = 0 // 0 means unlimited
	}
	return &SearchRateLimiter{clock: c, limit: limit, window: time.Minute}
}

// Allow reports whether another call is admitted right now, recording
// it if so.
func (l *SearchRateLimiter) Allow() error {
	if l.limit <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	cutoff := now.Add(-l.window)
	kept := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.timestamps = kept

	if len(l.timestamps) >= l.limit {
		return denied("rate limited", "web_search rate limit of %d/min exceeded", l.limit)
	}
	l.timestamps = append(l.timestamps, now)
	return nil
}

// ClampResultLimit bounds a requested result count by the guard's max.
func ClampResultLimit(guard config.WebSearchGuard, requested int) int {
	if guard.MaxLimit > 0 && (requested <= 0 || requested > guard.MaxLimit) {
		return guard.MaxLimit
	}
	if requested <= 0 {
		return 5
	}
	return requested
}

// CheckAppAllowed enforces open_app's allow-list.
func CheckAppAllowed(guard config.OpenAppGuard, app string) error {
	if len(guard.Allowlist) == 0 {
		return nil
	}
	for _, a := range guard.Allowlist {
		if a == app {
			return nil
		}
	}
	return denied("command denied", "app %q is not in the allowlist", app)
}
