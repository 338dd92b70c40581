package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OLLAMA_URL", "")
	s, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LLMProvider != "local" {
		t.Errorf("LLMProvider = %q, want %q", s.LLMProvider, "local")
	}
	if s.OllamaURL != "http://localhost:11434" {
		t.Errorf("OllamaURL = %q, want default", s.OllamaURL)
	}
	if s.ElevenLabsSpeed != nil {
		t.Errorf("ElevenLabsSpeed = %v, want nil", *s.ElevenLabsSpeed)
	}
}

func TestLoadDotenvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("LLM_PROVIDER=openai\nOPENAI_API_KEY=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("LLM_PROVIDER", "")

	s, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OpenAIAPIKey != "from-env" {
		t.Errorf("OpenAIAPIKey = %q, process env should win", s.OpenAIAPIKey)
	}
	if s.LLMProvider != "openai" {
		t.Errorf("LLMProvider = %q, want %q from file", s.LLMProvider, "openai")
	}
}

func TestLoadNumericFields(t *testing.T) {
	t.Setenv("ELEVENLABS_VOICE_SPEED", "0.9")
	t.Setenv("ELEVENLABS_OPTIMIZE_STREAMING_LATENCY", "2")
	s, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ElevenLabsSpeed == nil || *s.ElevenLabsSpeed != 0.9 {
		t.Errorf("ElevenLabsSpeed = %v, want 0.9", s.ElevenLabsSpeed)
	}
	if s.ElevenLabsStreamLatency == nil || *s.ElevenLabsStreamLatency != 2 {
		t.Errorf("ElevenLabsStreamLatency = %v, want 2", s.ElevenLabsStreamLatency)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("ELEVENLABS_VOICE_STABILITY", "fast")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for malformed float")
	}
	t.Setenv("ELEVENLABS_VOICE_STABILITY", "")
	t.Setenv("ELEVENLABS_OPTIMIZE_STREAMING_LATENCY", "low")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for malformed int")
	}
}
