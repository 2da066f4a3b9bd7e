package llm

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey = errors.New("api key is not set")
	ErrEmptyHistory  = errors.New("no messages to send")
)

// LLMClient streams a completion for messages. callback is invoked once per fragment, in the
// order the provider produced them; returning an error from it aborts the request.
type LLMClient interface {
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	GetModel() string
}

type LLMSettings struct {
	model       string  // model name
	temperature float64 // randomness (0.0 to 1.0)
	maxTokens   int     // maximum tokens to generate
	system      string  // system prompt
	stream      bool    // whether to stream response
}

type LLMOption func(*LLMSettings)

func defaultSettings(model string) LLMSettings {
	return LLMSettings{
		model:       model,
		temperature: 0.7,
		maxTokens:   2048,
		stream:      true,
	}
}

func applyOptions(model string, opts []LLMOption) LLMSettings {
	settings := defaultSettings(model)
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

// Common options for all LLM providers
func WithModel(model string) LLMOption {
	return func(s *LLMSettings) {
		if model != "" {
			s.model = model
		}
	}
}

func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

func WithStreaming(stream bool) LLMOption {
	return func(s *LLMSettings) { s.stream = stream }
}

type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // the message content
}
