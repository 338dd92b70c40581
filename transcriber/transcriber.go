// Package transcriber turns captured speech into text.
package transcriber

import (
	"context"
	"fmt"

	"leviathan/config"
)

// Transcriber converts one finished recording into its transcript.
type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	// Transcribe sends the encoded audio (format is the file extension,
	// e.g. "wav" or "flac") and returns the recognized text.
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

// New picks the transcription backend from settings.
func New(settings *config.Settings) (Transcriber, error) {
	if settings.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("set OPENAI_API_KEY to enable transcription")
	}
	return NewWhisper(settings.OpenAIAPIKey, settings.OpenAISTTModel), nil
}
