package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Config configures a chat Client. BaseURL selects the vendor.
type Config struct {
	Vendor     string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Client talks to any chat-completions compatible endpoint.
type Client struct {
	client *openai.Client
	vendor string
	model  string
}

// New creates a chat client. Unset BaseURL and Model are filled from the vendor defaults.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", vendorName(cfg.Vendor))
	}

	baseURL, model := defaultsFor(cfg.Vendor)
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		model = cfg.Model
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	} else {
		clientConfig.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		vendor: vendorName(cfg.Vendor),
		model:  model,
	}, nil
}

func defaultsFor(vendor string) (string, string) {
	switch strings.ToLower(vendor) {
	case "qwen", "alibaba":
		return QwenBaseURL, QwenDefaultModel
	case "deepseek":
		return DeepSeekBaseURL, DeepSeekDefaultModel
	default:
		return OpenAIBaseURL, OpenAIDefaultModel
	}
}

func vendorName(vendor string) string {
	if vendor == "" {
		return "openai"
	}
	return strings.ToLower(vendor)
}

// Vendor returns the configured vendor name.
func (c *Client) Vendor() string {
	return c.vendor
}

// Model returns the model being used.
func (c *Client) Model() string {
	return c.model
}

// ChatRequest is a single-turn chat request.
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// ChatResult is the assistant's text plus token usage.
type ChatResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Chat sends one system+user exchange and returns the first choice.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s: chat completion: %w", c.vendor, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: no choices in response", c.vendor)
	}

	return &ChatResult{
		Text:         strings.TrimSpace(resp.Choices[0].Message.Content),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// StatusCode extracts the HTTP status from a go-openai error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
