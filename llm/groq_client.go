package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	groqURL = "https://api.groq.com/openai/v1/chat/completions"

	// maxStreamLine bounds a single SSE line from the provider.
	maxStreamLine = 1024 * 1024
)

// ErrStreamTruncated means the event stream closed before its [DONE] marker, so the reply may be cut short.
var ErrStreamTruncated = errors.New("stream ended before [DONE]")

type GroqClient struct {
	apiKey     string
	httpClient *http.Client
	url        string
	model      string
}

// ProvideGroqClient reads GROQ_API_KEY once. The key is process-wide. GROQ_API_URL, when set,
// points the client at an OpenAI-compatible proxy instead of Groq.
func ProvideGroqClient() (*GroqClient, error) {
	client, err := NewGroqClient(os.Getenv("GROQ_API_KEY"), "")
	if err != nil {
		return nil, err
	}
	if url := os.Getenv("GROQ_API_URL"); url != "" {
		client.url = url
	}
	return client, nil
}

func NewGroqClient(apiKey, model string) (*GroqClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY: %w", ErrMissingAPIKey)
	}

	return &GroqClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		url:        groqURL,
		model:      model,
	}, nil
}

func (c *GroqClient) GetModel() string {
	return c.model
}

func (c *GroqClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	settings := applyOptions(c.model, opts)

	request := groqRequest{
		Model:       settings.model,
		Messages:    messages,
		Temperature: settings.temperature,
		MaxTokens:   settings.maxTokens,
		Stream:      settings.stream,
	}

	// Groq takes the system prompt as the first message.
	if settings.system != "" {
		systemMsg := Message{
			Role:    "system",
			Content: settings.system,
		}
		request.Messages = append([]Message{systemMsg}, request.Messages...)
	}

	if len(request.Messages) == 0 {
		return ErrEmptyHistory
	}

	resp, err := c.post(ctx, request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !settings.stream {
		return readGroqResponse(resp.Body, callback)
	}
	return readGroqStream(resp.Body, callback)
}

func (c *GroqClient) post(ctx context.Context, request groqRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if request.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

// readGroqStream walks the OpenAI-compatible event stream: one `data: {json}` line per chunk,
// terminated by `data: [DONE]`.
func readGroqStream(body io.Reader, callback func(chunk string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return nil
		}

		var chunk groqStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("error unmarshaling stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("provider error: %s", chunk.Error.Message)
		}

		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := callback(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream: %w", err)
	}
	return ErrStreamTruncated
}

func readGroqResponse(body io.Reader, callback func(chunk string) error) error {
	var response groqResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(response.Choices) == 0 {
		return fmt.Errorf("no choices in response")
	}

	if content := response.Choices[0].Message.Content; content != "" {
		return callback(content)
	}
	return nil
}

// Groq API types
type groqRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_completion_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type groqResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []groqChoice `json:"choices"`
}

type groqChoice struct {
	Index        int         `json:"index"`
	Message      groqMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqStreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *groqError `json:"error,omitempty"`
}

type groqError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
