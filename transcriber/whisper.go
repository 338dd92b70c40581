package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultSTTModel = "whisper-1"

// Whisper transcribes through the OpenAI audio transcriptions API.
type Whisper struct {
	client openai.Client
	model  string
	lang   string
}

func NewWhisper(apiKey, model string) *Whisper {
	if model == "" {
		model = defaultSTTModel
	}
	return &Whisper{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) SetLanguage(lang string) { w.lang = lang }

func (w *Whisper) GetLanguage() string { return w.lang }

func (w *Whisper) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio to transcribe")
	}
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), "audio."+format, "audio/"+format),
		Model: openai.AudioModel(w.model),
	}
	if w.lang != "" {
		params.Language = openai.String(w.lang)
	}
	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
