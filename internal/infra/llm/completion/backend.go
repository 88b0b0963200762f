package completion

import (
	"fmt"
	"strings"

	"github.com/yanqian/ai-summarizer/internal/infra/llm/chatgpt"
)

// NewBackend builds the backend for a provider name: openai, chatgpt, anthropic or echo.
func NewBackend(provider, apiKey, baseURL string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		return NewOpenAIBackend(apiKey, baseURL)
	case "chatgpt":
		client, err := chatgpt.NewClient(apiKey, baseURL)
		if err != nil {
			return nil, err
		}
		return NewChatGPTBackend(client), nil
	case "anthropic":
		return NewAnthropicBackend(apiKey, baseURL)
	case "echo":
		return EchoBackend{}, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", provider)
	}
}

// NewEstimator returns the estimator for a tokenizer name: words or tiktoken.
func NewEstimator(tokenizer string) TokenEstimator {
	if strings.EqualFold(strings.TrimSpace(tokenizer), "tiktoken") {
		return NewTiktokenEstimator()
	}
	return WordRateEstimator{}
}
