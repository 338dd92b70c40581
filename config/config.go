package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Settings carries every backend credential and tuning knob read from the
// environment. Zero values mean "not configured"; pointer fields distinguish
// "unset" from an explicit zero.
type Settings struct {
	ElevenLabsAPIKey         string
	ElevenLabsVoiceID        string
	ElevenLabsModelID        string
	ElevenLabsStability      *float64
	ElevenLabsSimilarity     *float64
	ElevenLabsSpeed          *float64
	ElevenLabsStreamLatency  *int
	OpenAIAPIKey             string
	OpenAISTTModel           string
	LLMProvider              string
	OpenAILLMModel           string
	OllamaModel              string
	OllamaURL                string
	PlaybackVolume           *float64
}

// Load reads .env (if present) without overriding variables already set in
// the process environment, then materializes Settings. Malformed numeric
// values are configuration errors and surface immediately.
func Load(dotenvPath string) (*Settings, error) {
	if dotenvPath == "" {
		dotenvPath = ".env"
	}
	if _, err := os.Stat(dotenvPath); err == nil {
		if err := godotenv.Load(dotenvPath); err != nil {
			return nil, fmt.Errorf("loading %s: %w", dotenvPath, err)
		}
	}

	s := &Settings{
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		ElevenLabsModelID: os.Getenv("ELEVENLABS_MODEL_ID"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAISTTModel:    os.Getenv("OPENAI_STT_MODEL"),
		LLMProvider:       strings.ToLower(envOr("LLM_PROVIDER", "local")),
		OpenAILLMModel:    os.Getenv("OPENAI_LLM_MODEL"),
		OllamaModel:       os.Getenv("OLLAMA_MODEL"),
		OllamaURL:         envOr("OLLAMA_URL", "http://localhost:11434"),
	}

	var err error
	if s.ElevenLabsStability, err = optionalFloat("ELEVENLABS_VOICE_STABILITY"); err != nil {
		return nil, err
	}
	if s.ElevenLabsSimilarity, err = optionalFloat("ELEVENLABS_VOICE_SIMILARITY"); err != nil {
		return nil, err
	}
	if s.ElevenLabsSpeed, err = optionalFloat("ELEVENLABS_VOICE_SPEED"); err != nil {
		return nil, err
	}
	if s.ElevenLabsStreamLatency, err = optionalInt("ELEVENLABS_OPTIMIZE_STREAMING_LATENCY"); err != nil {
		return nil, err
	}
	if s.PlaybackVolume, err = optionalFloat("TTS_PLAYBACK_VOLUME"); err != nil {
		return nil, err
	}
	return s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func optionalFloat(key string) (*float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid float %q", key, v)
	}
	return &f, nil
}

func optionalInt(key string) (*int, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return &n, nil
}
