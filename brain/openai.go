package brain

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI generates replies through the chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(request, reqContext string) (string, error) {
	resp, err := o.client.Chat.Completions.New(context.Background(), openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(request, reqContext)),
		},
		Temperature: openai.Float(0.6),
		MaxTokens:   openai.Int(120),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat returned no choices")
	}
	line := strings.TrimSpace(resp.Choices[0].Message.Content)
	if line == "" {
		return "", fmt.Errorf("openai chat returned an empty reply")
	}
	return line, nil
}
