package completion

import (
	"context"
	"errors"

	"github.com/yanqian/ai-summarizer/internal/infra/llm/chatgpt"
)

// ChatGPTBackend sends the prompt as a single user message to /chat/completions.
type ChatGPTBackend struct {
	client *chatgpt.Client
}

// NewChatGPTBackend adapts the ChatGPT HTTP client.
func NewChatGPTBackend(client *chatgpt.Client) *ChatGPTBackend {
	return &ChatGPTBackend{client: client}
}

// Complete implements Backend.
func (b *ChatGPTBackend) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    []chatgpt.Message{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chatgpt returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
