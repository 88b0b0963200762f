// Package completion guards and dispatches prompts to a remote completion backend.
package completion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
)

// Request is what a backend receives once the length guard has passed.
type Request struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Backend issues exactly one remote completion call.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// TokenEstimator predicts how many tokens a prompt will consume.
type TokenEstimator interface {
	EstimateTokens(prompt string, profile summarizer.ModelProfile) float64
}

// WordRateEstimator scales the whitespace word count by the profile's tokens-per-word rate.
type WordRateEstimator struct{}

// EstimateTokens implements TokenEstimator.
func (WordRateEstimator) EstimateTokens(prompt string, profile summarizer.ModelProfile) float64 {
	rate := profile.TokensPerWord
	if rate <= 0 {
		rate = 4.0 / 3.0
	}
	return float64(len(strings.Fields(prompt))) * rate
}

// Adapter is the summarizer's completion service. It computes the response budget,
// fails with prompt_too_long when nothing is left, and otherwise makes one call.
type Adapter struct {
	backend   Backend
	estimator TokenEstimator
	logger    *slog.Logger
}

// NewAdapter wraps a backend. A nil estimator means WordRateEstimator.
func NewAdapter(backend Backend, estimator TokenEstimator, logger *slog.Logger) *Adapter {
	if estimator == nil {
		estimator = WordRateEstimator{}
	}
	return &Adapter{backend: backend, estimator: estimator, logger: logger.With("component", "llm.completion")}
}

// ResponseBudget returns the tokens left for the response after the prompt.
func (a *Adapter) ResponseBudget(prompt string, profile summarizer.ModelProfile) int {
	return int(float64(profile.MaxTokens) - a.estimator.EstimateTokens(prompt, profile))
}

// PromptTokens reports the prompt estimate the budget is computed from, truncated like the budget.
func (a *Adapter) PromptTokens(prompt string, profile summarizer.ModelProfile) int {
	return int(a.estimator.EstimateTokens(prompt, profile))
}

// Complete implements summarizer.Completer.
func (a *Adapter) Complete(ctx context.Context, prompt string, profile summarizer.ModelProfile, temperature float32) (string, error) {
	budget := a.ResponseBudget(prompt, profile)
	if budget <= 0 {
		a.logger.Warn("prompt exceeds model budget", "model", profile.Name, "max_tokens", profile.MaxTokens, "budget", budget)
		return "", apperrors.Wrap(apperrors.CodePromptTooLong, "prompt is too long for the model", nil)
	}
	text, err := a.backend.Complete(ctx, Request{
		Prompt:      prompt,
		Model:       profile.Name,
		MaxTokens:   budget,
		Temperature: temperature,
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeLLM, "completion request failed", err)
	}
	a.logger.Debug("completion received", "model", profile.Name, "max_tokens", budget, "chars", len(text))
	return text, nil
}

var (
	_ summarizer.Completer          = (*Adapter)(nil)
	_ summarizer.PromptTokenCounter = (*Adapter)(nil)
)
