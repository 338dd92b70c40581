// Package tts synthesizes Leviathan's voice through ElevenLabs and plays it
// on the default output device. Audio is requested as raw PCM so chunks can
// be played as they arrive without a decode step.
package tts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"leviathan/config"
	"leviathan/log"
)

const (
	apiBase             = "https://api.elevenlabs.io/v1"
	defaultVoiceID      = "6vZmwtARjUveRB7xsRcW"
	defaultModelID      = "eleven_multilingual_v2"
	defaultStability    = 0.35
	defaultSimilarity   = 0.7
	defaultSpeed        = 0.9
	defaultOutputFormat = "pcm_22050"
	chunkSize           = 16 * 1024

	minSpeed = 0.7
	maxSpeed = 1.2
)

// Config carries the per-request voice settings.
type Config struct {
	APIKey          string
	VoiceID         string
	ModelID         string
	Stability       float64
	Similarity      float64
	Speed           float64
	UseSpeakerBoost bool
	StreamLatency   *int // 0-4, lower is lower latency
	OutputFormat    string
	Volume          float64 // playback gain, 1.0 = unchanged
}

// payload builds the synthesis request body.
func (c *Config) payload(text string) map[string]any {
	voice := map[string]any{
		"stability":         c.Stability,
		"similarity_boost":  c.Similarity,
		"use_speaker_boost": c.UseSpeakerBoost,
	}
	if c.Speed != 0 {
		voice["speed"] = c.Speed
	}
	p := map[string]any{
		"text":           text,
		"model_id":       c.ModelID,
		"voice_settings": voice,
	}
	if c.StreamLatency != nil {
		p["optimize_streaming_latency"] = *c.StreamLatency
	}
	if c.OutputFormat != "" {
		p["output_format"] = c.OutputFormat
	}
	return p
}

// sampleRate extracts the PCM rate from an output format like "pcm_22050".
func (c *Config) sampleRate() (int, error) {
	rest, ok := strings.CutPrefix(c.OutputFormat, "pcm_")
	if !ok {
		return 0, fmt.Errorf("unsupported output format %q (playback needs pcm_*)", c.OutputFormat)
	}
	rate, err := strconv.Atoi(rest)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("unsupported output format %q", c.OutputFormat)
	}
	return rate, nil
}

// Client performs synthesis requests and playback.
type Client struct {
	cfg    Config
	client *http.Client
}

// New builds a client from settings. A missing API key is an immediate
// configuration error; the caller must know the voice is unusable.
func New(settings *config.Settings) (*Client, error) {
	if settings.ElevenLabsAPIKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is required. Set it in your .env")
	}
	cfg := Config{
		APIKey:          settings.ElevenLabsAPIKey,
		VoiceID:         orDefault(settings.ElevenLabsVoiceID, defaultVoiceID),
		ModelID:         orDefault(settings.ElevenLabsModelID, defaultModelID),
		Stability:       floatOr(settings.ElevenLabsStability, defaultStability),
		Similarity:      floatOr(settings.ElevenLabsSimilarity, defaultSimilarity),
		Speed:           clampSpeed(floatOr(settings.ElevenLabsSpeed, defaultSpeed)),
		UseSpeakerBoost: true,
		StreamLatency:   settings.ElevenLabsStreamLatency,
		OutputFormat:    defaultOutputFormat,
		Volume:          floatOr(settings.PlaybackVolume, 1.0),
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: 60 * time.Second}}, nil
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func floatOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

func clampSpeed(speed float64) float64 {
	if speed < minSpeed {
		log.Warnf("voice speed %.2f below minimum %.1f; clamping", speed, minSpeed)
		return minSpeed
	}
	if speed > maxSpeed {
		log.Warnf("voice speed %.2f above maximum %.1f; clamping", speed, maxSpeed)
		return maxSpeed
	}
	return speed
}

// Speak synthesizes the whole line, then plays it. Blocks until playback
// finishes.
func (c *Client) Speak(text string) error {
	body, err := c.request(text, false)
	if err != nil {
		return err
	}
	defer body.Close()
	audio, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("reading synthesis response: %w", err)
	}
	if len(audio) == 0 {
		log.Warn("no audio data to play")
		return nil
	}
	return c.play(func(p player) error {
		p.write(audio)
		return nil
	})
}

// StreamSpeak plays chunks as they arrive from the streaming endpoint for a
// lower first-audio latency. Blocks until playback finishes.
func (c *Client) StreamSpeak(text string) error {
	body, err := c.request(text, true)
	if err != nil {
		return err
	}
	defer body.Close()
	return c.play(func(p player) error {
		buf := make([]byte, chunkSize)
		for {
			n, err := body.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				p.write(chunk)
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading synthesis stream: %w", err)
			}
		}
	})
}

func (c *Client) play(feed func(player) error) error {
	rate, err := c.cfg.sampleRate()
	if err != nil {
		return err
	}
	p, err := newPlayer(rate, c.cfg.Volume)
	if err != nil {
		return fmt.Errorf("opening playback device: %w", err)
	}
	feedErr := feed(p)
	if err := p.finish(); err != nil && feedErr == nil {
		return err
	}
	return feedErr
}

func (c *Client) request(text string, stream bool) (io.ReadCloser, error) {
	if text == "" {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	endpoint := apiBase + "/text-to-speech/" + c.cfg.VoiceID
	if stream {
		endpoint += "/stream"
	}
	payload, err := json.Marshal(c.cfg.payload(text))
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("elevenlabs request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

// player is the platform playback sink: raw 16-bit mono PCM in, blocking
// drain on finish.
type player interface {
	write(pcm []byte)
	finish() error
}
