package llm

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"character-chat/backend/pkg/config"

	"github.com/sashabaranov/go-openai"
)

// Role values used in completion payloads.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a completion payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the completion API collaborator. The chat turn path makes exactly
// one call per turn and never retries.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Pinger is implemented by clients that can probe provider reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewClient creates a completion client for any OpenAI-compatible provider.
func NewClient(cfg *config.Config, apiKey string) Client {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.HTTPClient = newHTTPClient(cfg.Completion.Timeout)

	switch cfg.Completion.Provider {
	case "deepseek":
		clientConfig.BaseURL = baseURLOr(cfg, "https://api.deepseek.com")
	case "openrouter":
		clientConfig.BaseURL = baseURLOr(cfg, "https://openrouter.ai/api/v1")
	case "ollama":
		clientConfig.BaseURL = baseURLOr(cfg, "http://localhost:11434/v1")
	default:
		// openai or any other compatible provider
		if cfg.Completion.BaseURL != "" {
			clientConfig.BaseURL = cfg.Completion.BaseURL
		}
	}

	return &client{
		api:         openai.NewClientWithConfig(clientConfig),
		model:       cfg.Completion.Model,
		maxTokens:   cfg.Completion.MaxTokens,
		temperature: float32(cfg.Completion.Temperature),
		timeout:     cfg.Completion.Timeout,
	}
}

func baseURLOr(cfg *config.Config, fallback string) string {
	if cfg.Completion.BaseURL != "" {
		return cfg.Completion.BaseURL
	}
	return fallback
}

func (c *client) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    convertMessages(messages),
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from completion API")
	}

	return resp.Choices[0].Message.Content, nil
}

// Ping probes the provider with a model listing, the cheapest call
// OpenAI-compatible providers expose.
func (c *client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("completion provider unreachable: %w", err)
	}
	return nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		switch m.Role {
		case RoleSystem:
			out[i] = openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: m.Content}
		case RoleAssistant:
			out[i] = openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content}
		default:
			out[i] = openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content}
		}
	}
	return out
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
