package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cklxx-labs/agentcore/internal/clock"
)

// Writer appends one JSON object per line to both a global log and a
// per-session log, matching the Python prototype's event_log shape
// byte-for-byte (ts, session_id, event, details).
type Writer struct {
	mu         sync.Mutex
	clock      clock.Clock
	globalPath string
	sessionDir string
}

// NewWriter builds a Writer. globalPath is the single append-only file
// every event is also written to; sessionDir holds one
// "<session_id>.jsonl" file per session.
func NewWriter(globalPath, sessionDir string, c clock.Clock) *Writer {
	if c == nil {
		c = clock.System{}
	}
	return &Writer{clock: c, globalPath: globalPath, sessionDir: sessionDir}
}

// Emit appends an event with no duration recorded.
func (w *Writer) Emit(sessionID string, kind Kind, details map[string]interface{}) Event {
	return w.emit(sessionID, kind, details, nil)
}

// EmitDuration appends an event carrying a measured duration.
func (w *Writer) EmitDuration(sessionID string, kind Kind, details map[string]interface{}, durationMs float64) Event {
	return w.emit(sessionID, kind, details, &durationMs)
}

func (w *Writer) emit(sessionID string, kind Kind, details map[string]interface{}, durationMs *float64) Event {
	ev := Event{
		Timestamp:  w.clock.Now().UTC(),
		SessionID:  sessionID,
		Event:      kind,
		Details:    details,
		DurationMs: durationMs,
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.globalPath != "" {
		_ = appendLine(w.globalPath, ev)
	}
	if w.sessionDir != "" && sessionID != "" {
		_ = appendLine(filepath.Join(w.sessionDir, sessionID+".jsonl"), ev)
	}
	return ev
}

func appendLine(path string, ev Event) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create timeline dir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open timeline log %s: %w", path, err)
	}
	defer f.Close()

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}

// ReadSessionEvents re-parses a per-session jsonl file back into the
// sequence of events that produced it.
func ReadSessionEvents(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeLines(data)
}

func decodeLines(data []byte) ([]Event, error) {
	var events []Event
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			return nil, fmt.Errorf("decode timeline event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}
