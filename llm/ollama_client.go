package llm

import (
	"context"
	"fmt"

	"github.com/ollama/ollama/api"
)

// ollamaChat is the part of *api.Client used here.
type ollamaChat interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// OllamaClient runs models served by a local Ollama daemon.
type OllamaClient struct {
	client ollamaChat
	model  string
}

// ProvideOllamaClient connects using OLLAMA_HOST, defaulting to the local daemon.
func ProvideOllamaClient() (*OllamaClient, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("error creating ollama client: %w", err)
	}
	return NewOllamaClient(client, ""), nil
}

func NewOllamaClient(client *api.Client, model string) *OllamaClient {
	return &OllamaClient{client: client, model: model}
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	settings := applyOptions(c.model, opts)

	msgs := make([]api.Message, 0, len(messages)+1)
	if settings.system != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: settings.system})
	}
	for _, m := range messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}
	if len(msgs) == 0 {
		return ErrEmptyHistory
	}

	stream := settings.stream
	req := &api.ChatRequest{
		Model:    settings.model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}

	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		return callback(resp.Message.Content)
	})
	if err != nil {
		return fmt.Errorf("ollama chat: %w", err)
	}
	return nil
}
