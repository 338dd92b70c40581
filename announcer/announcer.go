// Package announcer serializes speech and overlay updates. Every caller that
// wants the persona to say something out loud goes through one Announcer so
// bubbles and audio can never interleave.
package announcer

import (
	"sync"
	"time"

	"leviathan/overlay"
)

// SpeakFunc plays a line synchronously, returning once audio has finished.
type SpeakFunc func(line string) error

// Announcer owns the speak→play→clear cycle. The mutex covers exactly that
// critical section; Think writes happen outside it.
type Announcer struct {
	mu         sync.Mutex
	state      *overlay.StateFile
	speak      SpeakFunc
	clearDelay time.Duration
}

// DefaultClearDelay keeps the bubble up briefly after audio ends so the last
// words are readable.
const DefaultClearDelay = time.Second

func New(state *overlay.StateFile, speak SpeakFunc, clearDelay time.Duration) *Announcer {
	if clearDelay < 0 {
		clearDelay = DefaultClearDelay
	}
	return &Announcer{state: state, speak: speak, clearDelay: clearDelay}
}

// Announce runs one atomic announcement: show the speak bubble, play the
// line, wait the grace delay, clear. The overlay is cleared and the lock
// released on every exit path, including playback failure.
func (a *Announcer) Announce(line string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.state.Write(overlay.ModeSpeak, line); err != nil {
		return err
	}
	defer func() {
		time.Sleep(a.clearDelay)
		a.state.Clear()
	}()
	return a.speak(line)
}

// Think shows the thinking indicator. It does not take the announce lock;
// the next Announce or Clear supersedes it.
func (a *Announcer) Think() {
	a.state.Write(overlay.ModeThink, "...")
}

// Clear resets the overlay outside the announce cycle (startup, aborted
// transcriptions).
func (a *Announcer) Clear() {
	a.state.Clear()
}
