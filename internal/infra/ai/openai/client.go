package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/feedbacklab/insight-synthesizer/internal/domain/ai"
)

const maxTokens = 2048

// DefaultModel is used when the config does not name one.
const DefaultModel = "gpt-4o-mini"

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Complete sends role-tagged messages to the chat completion endpoint and
// returns the raw text of the first choice.
func (c *Client) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ai.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
