// Package brain generates Leviathan's spoken lines. Backends are tried in
// configured order; the deterministic persona generator sits at the end of
// every chain so a reply always comes back.
package brain

import (
	"fmt"
	"strings"

	"leviathan/config"
	"leviathan/log"
)

// Generator produces a persona reply for a request, with optional context.
type Generator interface {
	Name() string
	Generate(request, context string) (string, error)
}

// Brain tries each generator in order and falls back to the next on failure.
type Brain struct {
	chain []Generator
}

// New builds the backend chain from settings. LLM_PROVIDER picks the
// preferred backend; the persona generator always terminates the chain.
func New(settings *config.Settings) *Brain {
	var chain []Generator
	switch settings.LLMProvider {
	case "openai":
		if settings.OpenAIAPIKey != "" {
			chain = append(chain, NewOpenAI(settings.OpenAIAPIKey, settings.OpenAILLMModel))
		} else {
			log.Warn("LLM_PROVIDER=openai but OPENAI_API_KEY is unset; persona only")
		}
	case "ollama", "local":
		chain = append(chain, NewOllama(settings.OllamaURL, settings.OllamaModel))
	default:
		log.Warnf("unknown LLM_PROVIDER %q; persona only", settings.LLMProvider)
	}
	chain = append(chain, NewPersona())
	return &Brain{chain: chain}
}

// NewWithChain wires an explicit backend order. The last generator must not
// fail; callers normally end the chain with NewPersona.
func NewWithChain(chain ...Generator) *Brain {
	return &Brain{chain: chain}
}

// Name lists the chain, preferred backend first.
func (b *Brain) Name() string {
	names := make([]string, len(b.chain))
	for i, g := range b.chain {
		names[i] = g.Name()
	}
	return strings.Join(names, ">")
}

// Reply returns the first successful backend's line.
func (b *Brain) Reply(request, context string) string {
	request = strings.TrimSpace(request)
	if request == "" {
		request = "Speak, mortal."
	}
	for i, g := range b.chain {
		line, err := g.Generate(request, context)
		if err != nil {
			log.Warnf("%s backend failed (%v); falling back", g.Name(), err)
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			if i > 0 {
				log.Debugf("reply served by fallback backend %s", g.Name())
			}
			return line
		}
	}
	// Unreachable with a persona terminator, but never return silence.
	return request
}

const systemPrompt = `You are **Leviathan**, a high-energy human co-host (the dragon look is visual only; do not roleplay it unless asked).
- On-camera: keep the volley moving, avoid dead air; default to 1-2 sentences unless it's a gamestate call (stay concise there).
- Useful first, playful second: answer directly, give a next step or take, then a quick wit if there's room.
- Tone: lively, clever, grounded; no pet names, no "darling," no fantasy/cosmic theatrics.
- Humor: timely and on-topic; include names/events verbatim; tease lightly, stay constructive and actionable.
- Deliver one cohesive response; avoid double-takes or "but seriously" follow-ups.`

func buildPrompt(request, context string) string {
	ctx := ""
	if context != "" {
		ctx = "\nContext: " + context
	}
	return fmt.Sprintf("Request: %s%s\nProvide one cohesive reply (no follow-up takes or meta asides). Keep it concise.", request, ctx)
}
