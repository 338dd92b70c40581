package transcriber

import "context"

type FakeTranscriber struct {
	text string
	err  error
	lang string

	// Calls records the audio sizes seen, in order.
	Calls []int
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string           { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }
func (f *FakeTranscriber) GetLanguage() string     { return f.lang }

func (f *FakeTranscriber) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	f.Calls = append(f.Calls, len(audio))
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}
