package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	"github.com/yanqian/ai-summarizer/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
)

type stubBackend struct {
	calls []Request
	reply string
	err   error
}

func (s *stubBackend) Complete(_ context.Context, req Request) (string, error) {
	s.calls = append(s.calls, req)
	return s.reply, s.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func profile(maxTokens int) summarizer.ModelProfile {
	return summarizer.ModelProfile{Name: "test-model", MaxTokens: maxTokens, TokensPerWord: 4.0 / 3.0}
}

func prompt(words int) string {
	return strings.TrimSpace(strings.Repeat("word ", words))
}

func TestAdapterComplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		maxTokens     int
		promptWords   int
		wantCode      string
		wantMaxTokens int
	}{
		{name: "budget left", maxTokens: 4000, promptWords: 300, wantMaxTokens: 3600},
		{name: "fractional estimate truncates budget", maxTokens: 4000, promptWords: 2, wantMaxTokens: 3997},
		{name: "exactly at limit", maxTokens: 400, promptWords: 300, wantCode: apperrors.CodePromptTooLong},
		{name: "over limit", maxTokens: 400, promptWords: 1000, wantCode: apperrors.CodePromptTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := &stubBackend{reply: "  * point one\n"}
			adapter := NewAdapter(backend, nil, newTestLogger())

			got, err := adapter.Complete(context.Background(), prompt(tt.promptWords), profile(tt.maxTokens), 0.6)
			if tt.wantCode != "" {
				require.Error(t, err)
				require.True(t, apperrors.IsCode(err, tt.wantCode))
				require.Empty(t, backend.calls)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "  * point one\n", got)
			require.Len(t, backend.calls, 1)
			require.Equal(t, tt.wantMaxTokens, backend.calls[0].MaxTokens)
			require.Equal(t, "test-model", backend.calls[0].Model)
			require.InDelta(t, 0.6, backend.calls[0].Temperature, 1e-6)
		})
	}
}

func TestAdapterWrapsBackendErrors(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{err: errors.New("connection reset")}
	adapter := NewAdapter(backend, nil, newTestLogger())

	_, err := adapter.Complete(context.Background(), prompt(10), profile(4000), 0.6)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
	require.ErrorContains(t, err, "connection reset")
	require.Len(t, backend.calls, 1)
}

type fixedEstimator float64

func (f fixedEstimator) EstimateTokens(string, summarizer.ModelProfile) float64 { return float64(f) }

func TestAdapterUsesEstimator(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{reply: "ok"}
	adapter := NewAdapter(backend, fixedEstimator(3999), newTestLogger())

	_, err := adapter.Complete(context.Background(), "tiny", profile(4000), 0)
	require.NoError(t, err)
	require.Equal(t, 1, backend.calls[0].MaxTokens)

	adapter = NewAdapter(backend, fixedEstimator(4000), newTestLogger())
	_, err = adapter.Complete(context.Background(), "tiny", profile(4000), 0)
	require.True(t, apperrors.IsCode(err, apperrors.CodePromptTooLong))
}

func TestAdapterPromptTokensMatchesBudget(t *testing.T) {
	t.Parallel()
	adapter := NewAdapter(&stubBackend{reply: "ok"}, fixedEstimator(1234.9), newTestLogger())
	require.Equal(t, 1234, adapter.PromptTokens("tiny", profile(4000)))
	require.Equal(t, 2765, adapter.ResponseBudget("tiny", profile(4000)))

	wordRate := NewAdapter(&stubBackend{}, nil, newTestLogger())
	halves := summarizer.ModelProfile{Name: "test-model", MaxTokens: 4000, TokensPerWord: 1.5}
	require.Equal(t, 9, wordRate.PromptTokens("one two three four five six", halves))
}

func TestOpenAIBackendComplete(t *testing.T) {
	t.Parallel()
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.True(t, strings.HasSuffix(r.URL.Path, "/completions"))
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"text_completion","created":1,"model":"text-davinci-003","choices":[{"text":"\n* summary","index":0,"finish_reason":"stop","logprobs":null}]}`))
	}))
	defer server.Close()

	backend, err := NewOpenAIBackend("test-key", server.URL)
	require.NoError(t, err)

	got, err := backend.Complete(context.Background(), Request{Prompt: "Summarize this", Model: "text-davinci-003", MaxTokens: 512, Temperature: 0.5})
	require.NoError(t, err)
	require.Equal(t, "\n* summary", got)
	require.Equal(t, "Summarize this", body["prompt"])
	require.Equal(t, "text-davinci-003", body["model"])
	require.EqualValues(t, 512, body["max_tokens"])
}

func TestOpenAIBackendRequiresKey(t *testing.T) {
	t.Parallel()
	_, err := NewOpenAIBackend(" ", "")
	require.Error(t, err)
}

func TestAnthropicBackendComplete(t *testing.T) {
	t.Parallel()
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/messages"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest","content":[{"type":"text","text":"* first"},{"type":"text","text":"\n* second"}],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend("test-key", server.URL)
	require.NoError(t, err)

	got, err := backend.Complete(context.Background(), Request{Prompt: "Summarize", Model: "claude-3-5-haiku-latest", MaxTokens: 300, Temperature: 0.2})
	require.NoError(t, err)
	require.Equal(t, "* first\n* second", got)
	require.EqualValues(t, 300, body["max_tokens"])
}

func TestChatGPTBackendComplete(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatgpt.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		require.Equal(t, "user", req.Messages[0].Role)
		require.Equal(t, 128, req.MaxTokens)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := chatgpt.NewClient("test-key", server.URL)
	require.NoError(t, err)

	_, err = NewChatGPTBackend(client).Complete(context.Background(), Request{Prompt: "hi", Model: "gpt-4o-mini", MaxTokens: 128})
	require.ErrorContains(t, err, "no choices")
}

func TestEchoBackend(t *testing.T) {
	t.Parallel()
	got, err := EchoBackend{}.Complete(context.Background(), Request{Prompt: "Write a summary\nof this", MaxTokens: 42})
	require.NoError(t, err)
	require.Equal(t, "* Write a summary (5 prompt words, max_tokens=42)", got)
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider string
		want     any
		wantErr  bool
	}{
		{provider: "openai", want: &OpenAIBackend{}},
		{provider: "", want: &OpenAIBackend{}},
		{provider: "ChatGPT", want: &ChatGPTBackend{}},
		{provider: "anthropic", want: &AnthropicBackend{}},
		{provider: "echo", want: EchoBackend{}},
		{provider: "bard", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			t.Parallel()
			backend, err := NewBackend(tt.provider, "sk-test", "")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.IsType(t, tt.want, backend)
		})
	}
}

func TestNewEstimator(t *testing.T) {
	t.Parallel()
	require.IsType(t, WordRateEstimator{}, NewEstimator("words"))
	require.IsType(t, WordRateEstimator{}, NewEstimator(""))
	require.IsType(t, &TiktokenEstimator{}, NewEstimator("tiktoken"))
}
