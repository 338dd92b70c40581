package watcher

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"leviathan/overlay"
)

type recorder struct {
	instructions []string
	lines        []string
	genErr       error
	announceErr  error
}

func (r *recorder) generate(instruction string) (string, error) {
	r.instructions = append(r.instructions, instruction)
	if r.genErr != nil {
		return "", r.genErr
	}
	return "SAY: " + instruction, nil
}

func (r *recorder) announce(line string) error {
	r.lines = append(r.lines, line)
	return r.announceErr
}

func newTestWatcher(t *testing.T) (*Watcher, *overlay.EventLog, *recorder) {
	t.Helper()
	l := overlay.NewEventLog(filepath.Join(t.TempDir(), "gamestate_log.jsonl"))
	rec := &recorder{}
	return New(l, 0, rec.generate, rec.announce), l, rec
}

func TestSeedDoesNotAnnounceHistory(t *testing.T) {
	l := overlay.NewEventLog(filepath.Join(t.TempDir(), "log.jsonl"))
	l.Append(map[string]any{"event": "Team A eliminated"})
	l.Append(map[string]any{"event": "Team B eliminated"})

	rec := &recorder{}
	w := New(l, 0, rec.generate, rec.announce)
	if w.Seeded() != 2 {
		t.Errorf("Seeded() = %d, want 2", w.Seeded())
	}
	w.Poll()
	if len(rec.lines) != 0 {
		t.Errorf("historical events announced: %v", rec.lines)
	}
}

func TestRestartWithUnchangedLogAnnouncesNothing(t *testing.T) {
	l := overlay.NewEventLog(filepath.Join(t.TempDir(), "log.jsonl"))
	l.Append(map[string]any{"event": "Team A eliminated"})

	rec1 := &recorder{}
	w1 := New(l, 0, rec1.generate, rec1.announce)
	w1.Poll()
	if len(rec1.lines) != 0 {
		t.Fatalf("first process announced seeded events: %v", rec1.lines)
	}

	// Simulated restart: fresh watcher over the same log.
	rec2 := &recorder{}
	w2 := New(l, 0, rec2.generate, rec2.announce)
	for i := 0; i < 3; i++ {
		w2.Poll()
	}
	if len(rec2.lines) != 0 {
		t.Errorf("restart announced events: %v", rec2.lines)
	}
}

func TestEachIDAnnouncedAtMostOnce(t *testing.T) {
	w, l, rec := newTestWatcher(t)
	l.Append(map[string]any{"event": "Team A eliminated"})
	for i := 0; i < 5; i++ {
		w.Poll()
	}
	if len(rec.lines) != 1 {
		t.Fatalf("announced %d times, want 1: %v", len(rec.lines), rec.lines)
	}
	// Same identity appended again is still a duplicate.
	l.Append(map[string]any{"event": "Team A eliminated"})
	w.Poll()
	if len(rec.lines) != 1 {
		t.Errorf("duplicate identity re-announced: %v", rec.lines)
	}
}

func TestSingleElimination(t *testing.T) {
	w, l, rec := newTestWatcher(t)
	l.Append(map[string]any{"event": "Team Red eliminated"})
	w.Poll()
	if len(rec.instructions) != 1 {
		t.Fatalf("got %d instructions", len(rec.instructions))
	}
	want := "Announce clearly the elimination: Team Red eliminated. Include the team name verbatim."
	if rec.instructions[0] != want {
		t.Errorf("instruction = %q, want %q", rec.instructions[0], want)
	}
}

func TestBatchEliminationJoinsNames(t *testing.T) {
	w, l, rec := newTestWatcher(t)
	l.Append(map[string]any{"event": "Red"})
	l.Append(map[string]any{"event": "Blue"})
	w.Poll()
	if len(rec.instructions) != 1 {
		t.Fatalf("got %d instructions, want one batched call", len(rec.instructions))
	}
	inst := rec.instructions[0]
	if !strings.Contains(inst, "Red; Blue") {
		t.Errorf("instruction %q does not contain %q", inst, "Red; Blue")
	}
	if !strings.Contains(inst, "eliminations together") {
		t.Errorf("instruction %q lacks batch phrasing", inst)
	}
}

func TestVictoryPrecedence(t *testing.T) {
	w, l, rec := newTestWatcher(t)
	// Plain elimination arrives first in file order; victory still wins.
	l.Append(map[string]any{"event": "Team Red eliminated"})
	l.Append(map[string]any{
		"event_id": "final",
		"event":    "match over",
		"winner":   map[string]any{"name": "Team Blue", "reason": "last team standing"},
	})
	w.Poll()
	if len(rec.instructions) != 1 {
		t.Fatalf("got %d instructions", len(rec.instructions))
	}
	want := "Declare victory: Team Blue wins. Reason: last team standing. Include the winner name verbatim and clearly."
	if rec.instructions[0] != want {
		t.Errorf("instruction = %q, want %q", rec.instructions[0], want)
	}
}

func TestVictoryNameFallsBackToEvent(t *testing.T) {
	w, l, rec := newTestWatcher(t)
	l.Append(map[string]any{"event": "Team Blue wins", "winner": map[string]any{"reason": "points"}})
	w.Poll()
	want := "Declare victory: Team Blue wins wins. Reason: points. Include the winner name verbatim and clearly."
	if len(rec.instructions) != 1 || rec.instructions[0] != want {
		t.Errorf("instructions = %v, want [%q]", rec.instructions, want)
	}
}

func TestGenerateFailureKeepsIDMarked(t *testing.T) {
	w, l, rec := newTestWatcher(t)
	rec.genErr = errors.New("backend down")
	l.Append(map[string]any{"event": "Team A eliminated"})
	w.Poll()
	if len(rec.lines) != 0 {
		t.Fatalf("announce called despite generate failure: %v", rec.lines)
	}
	// Backend recovers; the event must not be retried.
	rec.genErr = nil
	w.Poll()
	if len(rec.lines) != 0 {
		t.Errorf("failed event was re-announced: %v", rec.lines)
	}
}

func TestAnnounceFailureDoesNotStopSubsequentEvents(t *testing.T) {
	w, l, rec := newTestWatcher(t)
	rec.announceErr = errors.New("speaker unplugged")
	l.Append(map[string]any{"event": "Team A eliminated"})
	w.Poll()

	rec.announceErr = nil
	l.Append(map[string]any{"event": "Team B eliminated"})
	w.Poll()
	if len(rec.lines) != 2 {
		t.Fatalf("lines = %v", rec.lines)
	}
	if !strings.Contains(rec.lines[1], "Team B eliminated") {
		t.Errorf("second event not announced: %v", rec.lines)
	}
}

func TestEventsWithoutIdentityAreIgnored(t *testing.T) {
	w, l, rec := newTestWatcher(t)
	l.Append(map[string]any{"score": 12.0})
	w.Poll()
	if len(rec.instructions) != 0 {
		t.Errorf("identity-less record produced instruction: %v", rec.instructions)
	}
}

func TestBatchPreservesFileOrder(t *testing.T) {
	w, l, rec := newTestWatcher(t)
	l.Append(map[string]any{"event": "First"})
	l.Append(map[string]any{"event": "Second"})
	l.Append(map[string]any{"event": "Third"})
	w.Poll()
	if len(rec.instructions) != 1 {
		t.Fatalf("got %d instructions", len(rec.instructions))
	}
	if !strings.Contains(rec.instructions[0], "First; Second; Third") {
		t.Errorf("batch order wrong: %q", rec.instructions[0])
	}
}
