// Package logging provides a small leveled component logger. Components
// are named subsystems (ROUTER, BREAKER, TOOL, LLM, ...); each logs with
// a colored "[NAME]" prefix so multi-component output stays readable on a
// terminal. This is deliberately not a structured/JSON logger — the
// session timeline (internal/timeline) is the audit trail; this is for
// human-facing operational output.
package logging

import (
	"fmt"
	"log"

	"github.com/fatih/color"
)

// LogLevel is a logger verbosity level.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ComponentLoggerConfig configures a ComponentLogger.
type ComponentLoggerConfig struct {
	ComponentName string
	Color         color.Attribute
	// EnabledLevels restricts which levels print; nil/empty enables all.
	EnabledLevels []LogLevel
}

// ComponentLogger logs tagged, leveled messages for one named component.
type ComponentLogger struct {
	name    string
	color   *color.Color
	enabled map[LogLevel]bool
}

// NewComponentLogger builds a ComponentLogger from cfg.
func NewComponentLogger(cfg ComponentLoggerConfig) *ComponentLogger {
	enabled := map[LogLevel]bool{}
	if len(cfg.EnabledLevels) == 0 {
		enabled[DEBUG], enabled[INFO], enabled[WARN], enabled[ERROR] = true, true, true, true
	} else {
		for _, lvl := range cfg.EnabledLevels {
			enabled[lvl] = true
		}
	}
	c := cfg.Color
	if c == 0 {
		c = color.FgWhite
	}
	return &ComponentLogger{
		name:    cfg.ComponentName,
		color:   color.New(c),
		enabled: enabled,
	}
}

func (l *ComponentLogger) log(level LogLevel, format string, args ...interface{}) {
	if !l.enabled[level] {
		return
	}
	prefix := l.color.Sprintf("[%s]", l.name)
	msg := fmt.Sprintf(format, args...)
	log.Printf("%s %s: %s", prefix, level, msg)
}

func (l *ComponentLogger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *ComponentLogger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *ComponentLogger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *ComponentLogger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

// Logger is the minimal interface components depend on, so call sites can
// accept either a *ComponentLogger or a test double.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

var (
	RouterLogger  = NewComponentLogger(ComponentLoggerConfig{ComponentName: "ROUTER", Color: color.FgCyan})
	BreakerLogger = NewComponentLogger(ComponentLoggerConfig{ComponentName: "BREAKER", Color: color.FgYellow})
	ToolLogger    = NewComponentLogger(ComponentLoggerConfig{ComponentName: "TOOL", Color: color.FgGreen})
	LLMLogger     = NewComponentLogger(ComponentLoggerConfig{ComponentName: "LLM", Color: color.FgMagenta})
	CoreLogger    = NewComponentLogger(ComponentLoggerConfig{ComponentName: "CORE", Color: color.FgWhite})
)

// LoggerFactory resolves a logger for a named component, falling back to
// a fresh default logger for unrecognized names.
type LoggerFactory struct{}

// GetLogger returns the well-known logger for component, or a new
// default-leveled logger if component isn't one of the well-known ones.
func (f *LoggerFactory) GetLogger(component string) *ComponentLogger {
	switch component {
	case "ROUTER":
		return RouterLogger
	case "BREAKER":
		return BreakerLogger
	case "TOOL":
		return ToolLogger
	case "LLM":
		return LLMLogger
	case "CORE":
		return CoreLogger
	default:
		return NewComponentLogger(ComponentLoggerConfig{ComponentName: component})
	}
}

// LogInfo is a convenience one-shot INFO log for ad-hoc component names.
func LogInfo(component, format string, args ...interface{}) {
	NewComponentLogger(ComponentLoggerConfig{ComponentName: component}).Info(format, args...)
}

// LogError is a convenience one-shot ERROR log for ad-hoc component names.
func LogError(component, format string, args ...interface{}) {
	NewComponentLogger(ComponentLoggerConfig{ComponentName: component}).Error(format, args...)
}
