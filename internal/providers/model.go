package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Role of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn
type Message struct {
	Role    Role
	Content string
}

// endpoint is an OpenAI-compatible API endpoint with its credentials
type endpoint struct {
	provider string
	apiKey   string
	baseURL  string
	headers  map[string]string
}

func (e endpoint) validate() error {
	if e.baseURL == "" {
		return fmt.Errorf("%s: base URL is empty", e.provider)
	}
	if strings.ContainsAny(e.apiKey, "\r\n") {
		return fmt.Errorf("%s: API key contains line breaks", e.provider)
	}
	for name, value := range e.headers {
		if name == "" || strings.ContainsAny(name+value, "\r\n") {
			return fmt.Errorf("%s: invalid header %q", e.provider, name)
		}
	}
	return nil
}

func (e endpoint) client() openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(e.apiKey),
		option.WithBaseURL(e.baseURL),
		option.WithMaxRetries(2),
	}
	for _, name := range sortedKeys(e.headers) {
		opts = append(opts, option.WithHeader(name, e.headers[name]))
	}
	return openai.NewClient(opts...)
}

// ChatModel is a named, callable chat model
type ChatModel struct {
	DisplayName string
	Provider    string
	Model       string
	Temperature float64
	BaseURL     string
	// Headers are attached to every outgoing request
	Headers map[string]string

	client   openai.Client
	position int // index in the provider's model list
}

func newChatModel(e endpoint, model, displayName string, temperature float64) (*ChatModel, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	if model == "" {
		return nil, fmt.Errorf("%s: model name is empty", e.provider)
	}

	headers := make(map[string]string, len(e.headers))
	for k, v := range e.headers {
		headers[k] = v
	}

	return &ChatModel{
		DisplayName: displayName,
		Provider:    e.provider,
		Model:       model,
		Temperature: temperature,
		BaseURL:     e.baseURL,
		Headers:     headers,
		client:      e.client(),
	}, nil
}

func (m *ChatModel) listPosition() int { return m.position }

// Invoke sends messages and returns the text of the first completion choice
func (m *ChatModel) Invoke(ctx context.Context, messages []Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case RoleUser:
			params = append(params, openai.UserMessage(msg.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			return "", fmt.Errorf("unsupported role %q", msg.Role)
		}
	}

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(m.Model),
		Messages:    params,
		Temperature: openai.Float(m.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", m.Provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion returned no choices", m.Provider)
	}

	choice := resp.Choices[0]
	if choice.Message.Content == "" && choice.Message.Refusal != "" {
		return choice.Message.Refusal, nil
	}
	return choice.Message.Content, nil
}

// EmbeddingModel is a named, callable embedding model
type EmbeddingModel struct {
	DisplayName string
	Provider    string
	Model       string
	BaseURL     string

	client   openai.Client
	position int
}

func newEmbeddingModel(e endpoint, model, displayName string) (*EmbeddingModel, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	if model == "" {
		return nil, fmt.Errorf("%s: model name is empty", e.provider)
	}
	return &EmbeddingModel{
		DisplayName: displayName,
		Provider:    e.provider,
		Model:       model,
		BaseURL:     e.baseURL,
		client:      e.client(),
	}, nil
}

func (m *EmbeddingModel) listPosition() int { return m.position }

// Embed returns one vector per input text, in input order
func (m *EmbeddingModel) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := m.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(m.Model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("%s embedding failed: %w", m.Provider, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%s returned %d embeddings for %d inputs", m.Provider, len(resp.Data), len(texts))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float64, len(data))
	for i, d := range data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
