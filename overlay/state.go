// Package overlay owns the JSON documents behind the browser overlay: the
// speech-bubble state, the captured context snapshot, the latest gamestate,
// and the append-only gamestate event log. Every document is a single small
// file replaced wholesale on write; readers fall back to defaults when a file
// is missing or unparseable.
package overlay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	ModeSpeak = "speak"
	ModeThink = "think"
	ModeClear = "clear"
)

const DefaultFontSize = 30

// State is the overlay bubble document rendered by the browser source.
type State struct {
	Mode     string  `json:"mode"`
	Text     string  `json:"text"`
	FontSize int     `json:"font_size"`
	TS       float64 `json:"ts"`
}

func defaultState() State {
	return State{Mode: ModeClear, Text: "", FontSize: DefaultFontSize, TS: 0}
}

// StateFile reads and writes the single overlay state document.
type StateFile struct {
	path     string
	fontSize int
}

func NewStateFile(path string, fontSize int) *StateFile {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return &StateFile{path: path, fontSize: fontSize}
}

func (s *StateFile) Path() string { return s.path }

// Write replaces the overlay state document.
func (s *StateFile) Write(mode, text string) error {
	return writeDoc(s.path, State{
		Mode:     mode,
		Text:     text,
		FontSize: s.fontSize,
		TS:       now(),
	})
}

// Clear resets the overlay to an empty bubble.
func (s *StateFile) Clear() error {
	return s.Write(ModeClear, "")
}

// Read returns the current state, or the default clear state when the file
// is absent or corrupt.
func (s *StateFile) Read() State {
	st := defaultState()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return defaultState()
	}
	return st
}

func writeDoc(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
