// Package watcher tails the gamestate event log and turns newly observed
// events into spoken announcements.
package watcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leviathan/log"
	"leviathan/overlay"
)

// GenerateFunc produces the persona line for an announcement instruction.
type GenerateFunc func(instruction string) (string, error)

// AnnounceFunc speaks a line and drives the overlay; it blocks until the
// announcement cycle completes.
type AnnounceFunc func(line string) error

const DefaultInterval = time.Second

// Watcher polls the event log, deduplicates by event identity, and announces
// each identity at most once for the lifetime of the process. An id stays
// marked even when its announcement fails; a broken speaker should not cause
// the same elimination to be re-announced on every cycle.
type Watcher struct {
	events    *overlay.EventLog
	announced map[string]struct{}
	interval  time.Duration
	generate  GenerateFunc
	announce  AnnounceFunc
}

// New builds a watcher and seeds the announced set by replaying the whole
// log once. Historical events are never announced.
func New(events *overlay.EventLog, interval time.Duration, generate GenerateFunc, announce AnnounceFunc) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &Watcher{
		events:    events,
		announced: make(map[string]struct{}),
		interval:  interval,
		generate:  generate,
		announce:  announce,
	}
	for _, e := range events.ReadAll() {
		if id := e.ID(); id != "" {
			w.announced[id] = struct{}{}
		}
	}
	return w
}

// Seeded reports how many identities the startup replay marked as seen.
func (w *Watcher) Seeded() int { return len(w.announced) }

// Run polls until ctx is cancelled. Announcement failures are logged and the
// loop continues.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	log.Infof("gamestate watcher running (interval %s, %d historical events)", w.interval, len(w.announced))
	for {
		select {
		case <-ctx.Done():
			log.Info("gamestate watcher stopped")
			return
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll runs one cycle: full log re-scan, collect unseen events in file
// order, classify, generate, announce. The full re-scan keeps dedupe correct
// even when the log file is rewritten underneath us.
func (w *Watcher) Poll() {
	var batch []overlay.Event
	for _, e := range w.events.ReadAll() {
		id := e.ID()
		if id == "" {
			continue
		}
		if _, seen := w.announced[id]; seen {
			continue
		}
		w.announced[id] = struct{}{}
		batch = append(batch, e)
	}
	if len(batch) == 0 {
		return
	}

	instruction := classify(batch)
	log.Debugf("watcher batch of %d: %s", len(batch), instruction)

	line, err := w.generate(instruction)
	if err != nil {
		log.Errorf("watcher reply generation: %v", err)
		return
	}
	if err := w.announce(line); err != nil {
		log.Errorf("watcher announce: %v", err)
	}
}

// classify picks the announcement phrasing for a batch of new events.
// Victory beats everything; a lone elimination gets called out by itself;
// several eliminations land together in one call.
func classify(batch []overlay.Event) string {
	for _, e := range batch {
		if win, ok := e.Winner(); ok {
			name, _ := win["name"].(string)
			if name == "" {
				name = e.Name()
			}
			reason, _ := win["reason"].(string)
			return fmt.Sprintf("Declare victory: %s wins. Reason: %s. Include the winner name verbatim and clearly.", name, reason)
		}
	}
	if len(batch) == 1 {
		return fmt.Sprintf("Announce clearly the elimination: %s. Include the team name verbatim.", batch[0].Name())
	}
	var names []string
	for _, e := range batch {
		if n := e.Name(); n != "" {
			names = append(names, n)
		}
	}
	return fmt.Sprintf("Announce clearly these eliminations together: %s. Include each team name verbatim.", strings.Join(names, "; "))
}
