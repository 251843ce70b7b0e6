package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestComponentLogger_RespectsEnabledLevels(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(nil)

	logger := NewComponentLogger(ComponentLoggerConfig{
		ComponentName: "TEST",
		Color:         color.FgRed,
		EnabledLevels: []LogLevel{INFO, ERROR},
	})

	logger.Info("hello %s", "world")
	if !strings.Contains(buf.String(), "[TEST]") || !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("expected component-tagged info output, got %q", buf.String())
	}

	buf.Reset()
	logger.Debug("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be suppressed, got %q", buf.String())
	}

	buf.Reset()
	logger.Error("boom")
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected error output, got %q", buf.String())
	}
}

func TestComponentLoggerConfig_DefaultsToAllLevels(t *testing.T) {
	logger := NewComponentLogger(ComponentLoggerConfig{ComponentName: "TEST"})
	for _, lvl := range []LogLevel{DEBUG, INFO, WARN, ERROR} {
		if !logger.enabled[lvl] {
			t.Errorf("expected level %s enabled by default", lvl)
		}
	}
}

func TestLoggerFactory_GetLogger(t *testing.T) {
	factory := &LoggerFactory{}

	cases := []struct {
		name     string
		expected *ComponentLogger
	}{
		{"ROUTER", RouterLogger},
		{"TOOL", ToolLogger},
		{"LLM", LLMLogger},
		{"CORE", CoreLogger},
	}
	for _, tc := range cases {
		if got := factory.GetLogger(tc.name); got != tc.expected {
			t.Errorf("GetLogger(%s) = %v, want %v", tc.name, got, tc.expected)
		}
	}

	if factory.GetLogger("UNKNOWN") == nil {
		t.Error("expected a usable logger for unknown component")
	}
}

func TestConvenienceFunctions(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(nil)

	LogInfo("TEST", "hi %d", 1)
	if !strings.Contains(buf.String(), "hi 1") {
		t.Errorf("expected convenience info output, got %q", buf.String())
	}
}
