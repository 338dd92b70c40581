package overlay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
)

// Event is one record from the gamestate event log. Records carry arbitrary
// fields; the ones the watcher cares about are picked out by the helpers.
type Event map[string]any

// ID returns the record identity: event_id when present, else event.
// An empty string means the record has no identity and is never announced.
func (e Event) ID() string {
	if id, ok := e["event_id"].(string); ok && id != "" {
		return id
	}
	if ev, ok := e["event"].(string); ok {
		return ev
	}
	return ""
}

// Name returns the human-readable event text.
func (e Event) Name() string {
	ev, _ := e["event"].(string)
	return ev
}

// Winner returns the winner object if the record declares one.
func (e Event) Winner() (map[string]any, bool) {
	w, ok := e["winner"].(map[string]any)
	if !ok || len(w) == 0 {
		return nil, false
	}
	return w, true
}

// decodeEvent parses one log line. Callers decide what to do with a parse
// failure; the log itself never rejects garbled lines.
func decodeEvent(line []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(line, &e); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("log line is not a JSON object")
	}
	return e, nil
}

// GamestateFile reads and writes the latest full gamestate document.
type GamestateFile struct {
	path string
}

func NewGamestateFile(path string) *GamestateFile {
	return &GamestateFile{path: path}
}

// Write replaces the gamestate document, stamping ts when absent.
// The caller's map is left untouched.
func (g *GamestateFile) Write(doc map[string]any) error {
	if _, ok := doc["ts"]; !ok {
		doc = maps.Clone(doc)
		doc["ts"] = now()
	}
	return writeDoc(g.path, doc)
}

func (g *GamestateFile) Read() map[string]any {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return map[string]any{}
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return map[string]any{}
	}
	return doc
}

// EventLog is the append-only JSON-lines gamestate history. Single writer;
// appends rely on OS append semantics, no locking.
type EventLog struct {
	path string
}

func NewEventLog(path string) *EventLog {
	return &EventLog{path: path}
}

func (l *EventLog) Path() string { return l.path }

// Append serializes record as one line and appends it to the log.
func (l *EventLog) Append(record map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// ReadAll parses every line independently, skipping lines that fail to parse
// as a JSON object. A missing file is an empty log. A truncated trailing line
// is skipped like any other malformed line.
func (l *EventLog) ReadAll() []Event {
	f, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		e, err := decodeEvent(line)
		if err != nil {
			continue
		}
		events = append(events, e)
	}
	return events
}
