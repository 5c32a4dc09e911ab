package llmprovider

import (
	"context"

	"parent-care-assistant/pkg/anthropic"
	"parent-care-assistant/pkg/gemini"
	"parent-care-assistant/pkg/openaicompat"
)

// AnthropicAdapter adapts pkg/anthropic to the Provider interface
type AnthropicAdapter struct {
	client *anthropic.Client
}

// NewAnthropicAdapter creates a new Anthropic adapter
func NewAnthropicAdapter(client *anthropic.Client) *AnthropicAdapter {
	return &AnthropicAdapter{client: client}
}

// GenerateContent implements Provider
func (a *AnthropicAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	msgs := make([]anthropic.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = anthropic.Message{Role: m.Role, Content: m.Text}
	}

	out, err := a.client.Complete(ctx, anthropic.CompleteRequest{
		System:      req.SystemInstruction,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:         out.Text,
		ProviderName: a.Name(),
		ModelName:    a.client.Model(),
		Usage: &Usage{
			InputTokens:  out.InputTokens,
			OutputTokens: out.OutputTokens,
			TotalTokens:  out.InputTokens + out.OutputTokens,
		},
	}, nil
}

func (a *AnthropicAdapter) Name() string  { return "anthropic" }
func (a *AnthropicAdapter) Model() string { return a.client.Model() }

// GeminiAdapter adapts pkg/gemini to the Provider interface
type GeminiAdapter struct {
	client *gemini.Client
}

// NewGeminiAdapter creates a new Gemini adapter
func NewGeminiAdapter(client *gemini.Client) *GeminiAdapter {
	return &GeminiAdapter{client: client}
}

// GenerateContent implements Provider
func (a *GeminiAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	greq := gemini.GenerateRequest{
		Contents: make([]gemini.Content, len(req.Messages)),
	}
	if req.SystemInstruction != "" {
		greq.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: req.SystemInstruction}}}
	}
	for i, m := range req.Messages {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		greq.Contents[i] = gemini.Content{Role: role, Parts: []gemini.Part{{Text: m.Text}}}
	}
	if req.Temperature > 0 || req.MaxTokens > 0 || req.JSONOutput {
		greq.GenerationConfig = &gemini.GenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
		if req.JSONOutput {
			greq.GenerationConfig.ResponseMIMEType = "application/json"
		}
	}

	resp, err := a.client.GenerateContent(ctx, greq)
	if err != nil {
		return nil, err
	}

	usage := &Usage{}
	if resp.UsageMetadata != nil {
		usage.InputTokens = resp.UsageMetadata.PromptTokenCount
		usage.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
		usage.TotalTokens = resp.UsageMetadata.TotalTokenCount
	}

	return &Response{
		Text:         resp.Text(),
		ProviderName: a.Name(),
		ModelName:    a.client.Model(),
		Usage:        usage,
	}, nil
}

func (a *GeminiAdapter) Name() string  { return "gemini" }
func (a *GeminiAdapter) Model() string { return a.client.Model() }

// OpenAICompatAdapter adapts pkg/openaicompat (OpenAI, Qwen, DeepSeek) to the Provider interface
type OpenAICompatAdapter struct {
	client *openaicompat.Client
}

// NewOpenAICompatAdapter creates a new adapter for any chat-completions vendor
func NewOpenAICompatAdapter(client *openaicompat.Client) *OpenAICompatAdapter {
	return &OpenAICompatAdapter{client: client}
}

// GenerateContent implements Provider. Only the last user message is sent.
func (a *OpenAICompatAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	var user string
	for _, m := range req.Messages {
		if m.Role == "user" {
			user = m.Text
		}
	}

	out, err := a.client.Chat(ctx, openaicompat.ChatRequest{
		System:      req.SystemInstruction,
		User:        user,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
		JSONMode:    req.JSONOutput,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:         out.Text,
		ProviderName: a.Name(),
		ModelName:    a.client.Model(),
		Usage: &Usage{
			InputTokens:  out.InputTokens,
			OutputTokens: out.OutputTokens,
			TotalTokens:  out.TotalTokens,
		},
	}, nil
}

func (a *OpenAICompatAdapter) Name() string  { return a.client.Vendor() }
func (a *OpenAICompatAdapter) Model() string { return a.client.Model() }
