package tts

import "sync"

// FakeSpeaker records spoken lines instead of synthesizing audio. Used by
// tests and the headless mode.
type FakeSpeaker struct {
	mu    sync.Mutex
	Lines []string
	Err   error
}

func NewFakeSpeaker() *FakeSpeaker {
	return &FakeSpeaker{}
}

func (f *FakeSpeaker) Speak(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lines = append(f.Lines, text)
	return f.Err
}

func (f *FakeSpeaker) StreamSpeak(text string) error {
	return f.Speak(text)
}

func (f *FakeSpeaker) Spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Lines...)
}
