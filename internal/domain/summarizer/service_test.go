package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
)

type stubCompleter struct {
	prompts  []string
	profiles []ModelProfile
	temps    []float32
	respond  func(call int, prompt string) (string, error)
}

func (s *stubCompleter) Complete(_ context.Context, prompt string, profile ModelProfile, temperature float32) (string, error) {
	call := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	s.profiles = append(s.profiles, profile)
	s.temps = append(s.temps, temperature)
	if s.respond == nil {
		return fmt.Sprintf("summary-%d", call), nil
	}
	return s.respond(call, prompt)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(profiles ProfileRegistry) Config {
	return Config{
		SummaryLengthWords: 400,
		Temperature:        0.6,
		Model:              "test",
		Profiles:           profiles,
	}
}

func TestSummarizeShortArticleUsesTwoCalls(t *testing.T) {
	t.Parallel()
	client := &stubCompleter{respond: func(call int, _ string) (string, error) {
		if call == 0 {
			return "* bullet one\n* bullet two", nil
		}
		return "  Final narrative, returned as is.\n", nil
	}}
	svc := NewService(testConfig(ProfileRegistry{"test": testProfile(4000)}), client, newTestLogger())

	text := words(20, "alpha") + "\n" + words(30, "beta") + "\n" + words(25, "gamma")
	resp, err := svc.Summarize(context.Background(), Request{Title: "Nickel", Text: text})
	require.NoError(t, err)

	require.Equal(t, "  Final narrative, returned as is.\n", resp.Summary)
	require.Equal(t, 1, resp.Chunks)
	require.Equal(t, 2, resp.Usage.CompletionCalls)
	require.Len(t, client.prompts, 2)
	require.Contains(t, client.prompts[0], "Passage:\n"+text+"\n\nSummary:")
	require.Contains(t, client.prompts[0], " titled Nickel")
	require.Contains(t, client.prompts[1], "* bullet one\n* bullet two")
	require.Contains(t, client.prompts[1], " titled Nickel")
	for _, temp := range client.temps {
		require.InDelta(t, 0.6, temp, 1e-6)
	}
}

func TestSummarizeThreadsRunningSummary(t *testing.T) {
	t.Parallel()
	profile := testProfile(2000)
	budget := int(MaxChunkWords(400, profile))
	paragraphs := []string{
		words(budget-10, "one"),
		words(budget-20, "two"),
		words(budget-30, "three"),
	}
	client := &stubCompleter{}
	svc := NewService(testConfig(ProfileRegistry{"test": profile}), client, newTestLogger())

	resp, err := svc.Summarize(context.Background(), Request{Text: strings.Join(paragraphs, "\n")})
	require.NoError(t, err)

	require.Equal(t, 3, resp.Chunks)
	require.Equal(t, "summary-3", resp.Summary)
	require.Len(t, client.prompts, 4)

	require.Contains(t, client.prompts[0], "Help me summarize the following passages")
	soFar := budget - 10
	for i := 1; i < 3; i++ {
		prompt := client.prompts[i]
		chunkWords := wordCount(paragraphs[i])
		require.Contains(t, prompt, fmt.Sprintf("Previous passage summary:\nsummary-%d\n", i-1))
		require.Contains(t, prompt, "Next passage:\n"+paragraphs[i]+"\n")
		require.Contains(t, prompt, fmt.Sprintf("Use roughly %d%% of the words", previousChunkPercentage(soFar, chunkWords)))
		soFar += chunkWords
	}
	require.Contains(t, client.prompts[3], "incorporating the following points:\n\nsummary-2\n")
	require.NotContains(t, client.prompts[3], " titled ")
}

func TestSummarizeEmptyArticleStillFinalizes(t *testing.T) {
	t.Parallel()
	client := &stubCompleter{}
	svc := NewService(testConfig(ProfileRegistry{"test": testProfile(4000)}), client, newTestLogger())

	resp, err := svc.Summarize(context.Background(), Request{Text: "\n \n"})
	require.NoError(t, err)
	require.Equal(t, 0, resp.Chunks)
	require.Equal(t, "summary-0", resp.Summary)
	require.Len(t, client.prompts, 1)
	require.True(t, strings.HasPrefix(client.prompts[0], "Write me a short article"))
}

func TestSummarizeAbortsOnFirstFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "prompt too long keeps its code",
			err:      apperrors.Wrap(apperrors.CodePromptTooLong, "prompt is too long for the model", nil),
			wantCode: apperrors.CodePromptTooLong,
		},
		{
			name:     "bare transport error becomes llm error",
			err:      errors.New("connection reset"),
			wantCode: apperrors.CodeLLM,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &stubCompleter{respond: func(call int, _ string) (string, error) {
				if call == 1 {
					return "", tt.err
				}
				return "ok", nil
			}}
			svc := NewService(testConfig(ProfileRegistry{"test": testProfile(4000)}), client, newTestLogger())

			_, err := svc.Summarize(context.Background(), Request{Text: "a\nb\nc", SummaryLengthWords: 3000})
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, tt.wantCode))
			require.ErrorIs(t, err, tt.err)
			require.Len(t, client.prompts, 2)
		})
	}
}

func TestSummarizeRequestOverrides(t *testing.T) {
	t.Parallel()
	client := &stubCompleter{}
	profiles := ProfileRegistry{"test": testProfile(4000), "big": {Name: "big", MaxTokens: 16000, TokensPerWord: 1.5}}
	svc := NewService(testConfig(profiles), client, newTestLogger())

	temp := float32(0.1)
	resp, err := svc.Summarize(context.Background(), Request{Text: "hello world", Model: "big", Temperature: &temp, SummaryLengthWords: 120})
	require.NoError(t, err)

	require.Equal(t, "big", resp.Model)
	require.Equal(t, 16000, client.profiles[0].MaxTokens)
	require.InDelta(t, 0.1, client.temps[0], 1e-6)
	require.Contains(t, client.prompts[0], "between 60 and 120 words")
}

func TestSummarizeUnknownModelFallsBack(t *testing.T) {
	t.Parallel()
	client := &stubCompleter{}
	svc := NewService(Config{SummaryLengthWords: 400, Temperature: 0.6}, client, newTestLogger())

	resp, err := svc.Summarize(context.Background(), Request{Text: "short text", Model: "mystery-model"})
	require.NoError(t, err)
	require.Equal(t, "mystery-model", resp.Model)
	require.Equal(t, 2048, client.profiles[0].MaxTokens)
}

func TestSummarizeRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{name: "negative length", req: Request{Text: "x", SummaryLengthWords: -5}},
		{name: "temperature too high", req: Request{Text: "x", Temperature: ptr(float32(3))}},
		{name: "temperature negative", req: Request{Text: "x", Temperature: ptr(float32(-0.1))}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &stubCompleter{}
			svc := NewService(testConfig(nil), client, newTestLogger())
			_, err := svc.Summarize(context.Background(), tt.req)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
			require.Empty(t, client.prompts)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidateRequest(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{name: "defaults", req: Request{Text: "x"}},
		{name: "overrides in range", req: Request{Text: "x", SummaryLengthWords: 2, Temperature: ptr(float32(2))}},
		{name: "one word summary", req: Request{Text: "x", SummaryLengthWords: 1}, wantErr: true},
		{name: "temperature too high", req: Request{Text: "x", Temperature: ptr(float32(2.5))}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateRequest(tt.req)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		})
	}
}

type countingCompleter struct {
	stubCompleter
	tokens int
}

func (c *countingCompleter) PromptTokens(string, ModelProfile) int {
	return c.tokens
}

func TestSummarizeUsageFollowsCompleterTokenCount(t *testing.T) {
	t.Parallel()
	profiles := ProfileRegistry{"test": testProfile(4000)}
	text := words(40, "alpha")

	counted := &countingCompleter{tokens: 321}
	resp, err := NewService(testConfig(profiles), counted, newTestLogger()).Summarize(context.Background(), Request{Text: text})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Usage.CompletionCalls)
	require.Equal(t, 642, resp.Usage.EstimatedPromptTokens)

	plain := &stubCompleter{}
	resp, err = NewService(testConfig(profiles), plain, newTestLogger()).Summarize(context.Background(), Request{Text: text})
	require.NoError(t, err)
	want := 0
	for _, prompt := range plain.prompts {
		want += profiles["test"].EstimateTokens(wordCount(prompt))
	}
	require.Equal(t, want, resp.Usage.EstimatedPromptTokens)
}
