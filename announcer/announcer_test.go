package announcer

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"leviathan/overlay"
)

func newTestAnnouncer(t *testing.T, speak SpeakFunc) (*Announcer, *overlay.StateFile) {
	t.Helper()
	sf := overlay.NewStateFile(filepath.Join(t.TempDir(), "state.json"), 30)
	return New(sf, speak, 0), sf
}

func TestAnnounceWritesThenClears(t *testing.T) {
	var seenDuringSpeak overlay.State
	var sf *overlay.StateFile
	a, sf := newTestAnnouncer(t, func(line string) error {
		seenDuringSpeak = sf.Read()
		return nil
	})
	if err := a.Announce("the abyss answers"); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if seenDuringSpeak.Mode != overlay.ModeSpeak || seenDuringSpeak.Text != "the abyss answers" {
		t.Errorf("state during playback = %+v", seenDuringSpeak)
	}
	after := sf.Read()
	if after.Mode != overlay.ModeClear || after.Text != "" {
		t.Errorf("state after announce = %+v", after)
	}
}

func TestAnnounceClearsOnSpeakError(t *testing.T) {
	speakErr := errors.New("playback device gone")
	a, sf := newTestAnnouncer(t, func(string) error { return speakErr })
	if err := a.Announce("doomed line"); !errors.Is(err, speakErr) {
		t.Fatalf("Announce error = %v, want %v", err, speakErr)
	}
	if got := sf.Read(); got.Mode != overlay.ModeClear {
		t.Errorf("state after failed announce = %+v, want cleared", got)
	}
}

func TestAnnounceMutualExclusion(t *testing.T) {
	firstInPlayback := make(chan struct{})
	releaseFirst := make(chan struct{})

	var sf *overlay.StateFile
	var mu sync.Mutex
	var observed []string

	a, sf := newTestAnnouncer(t, func(line string) error {
		mu.Lock()
		observed = append(observed, line)
		mu.Unlock()
		if line == "first" {
			close(firstInPlayback)
			<-releaseFirst
		}
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.Announce("first")
	}()
	go func() {
		defer wg.Done()
		<-firstInPlayback
		// While first is mid-playback the overlay must still show it.
		if got := sf.Read(); got.Text != "first" {
			t.Errorf("overlay during first playback = %+v", got)
		}
		done := make(chan struct{})
		go func() {
			a.Announce("second")
			close(done)
		}()
		select {
		case <-done:
			t.Error("second announce completed while first held the lock")
		case <-time.After(50 * time.Millisecond):
		}
		close(releaseFirst)
		<-done
	}()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(observed) != 2 || observed[0] != "first" || observed[1] != "second" {
		t.Errorf("playback order = %v", observed)
	}
}

func TestThinkOutsideLock(t *testing.T) {
	blocked := make(chan struct{})
	release := make(chan struct{})
	a, sf := newTestAnnouncer(t, func(string) error {
		close(blocked)
		<-release
		return nil
	})

	go a.Announce("long speech")
	<-blocked

	// Think must not block on the announce lock.
	done := make(chan struct{})
	go func() {
		a.Think()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Think blocked behind an in-flight announce")
	}
	if got := sf.Read(); got.Mode != overlay.ModeThink {
		t.Errorf("state after Think = %+v", got)
	}
	close(release)
}
