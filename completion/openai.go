package completion

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used unless WithModel overrides it.
const DefaultModel = openai.GPT4oMini

// OpenAIClient is a Completer backed by the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	opts   []Option
}

// NewOpenAIClient builds a client. baseURL may be empty to use the public
// endpoint; opts are applied to every request.
func NewOpenAIClient(apiKey, baseURL string, opts ...Option) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		opts:   append([]Option{WithModel(DefaultModel)}, opts...),
	}
}

// Complete returns the text of the first choice verbatim.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	req := NewRequest(systemPrompt, userText, c.opts...)

	resp, err := c.client.CreateChatCompletion(ctx, toOpenAI(req))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAI(r *Request) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model:    r.Model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(r.Messages)),
	}
	for _, m := range r.Messages {
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	if r.Temperature != nil {
		out.Temperature = *r.Temperature
	}
	if r.MaxTokens != nil {
		out.MaxTokens = *r.MaxTokens
	}
	return out
}
