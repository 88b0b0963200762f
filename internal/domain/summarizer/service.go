package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
	"github.com/yanqian/ai-summarizer/pkg/metrics"
)

// Service exposes summarization capabilities.
type Service interface {
	Summarize(ctx context.Context, req Request) (Response, error)
}

// Completer is the completion service boundary. Implementations reject prompts that leave
// no room for a response before contacting the remote model.
type Completer interface {
	Complete(ctx context.Context, prompt string, profile ModelProfile, temperature float32) (string, error)
}

// PromptTokenCounter is implemented by completers whose prompt budget uses a tokenizer other
// than the profile's word rate. Reported usage then matches the budget that was enforced.
type PromptTokenCounter interface {
	PromptTokens(prompt string, profile ModelProfile) int
}

type service struct {
	cfg       Config
	completer Completer
	logger    *slog.Logger
}

// NewService is a wire provider for the summarizer domain.
func NewService(cfg Config, completer Completer, logger *slog.Logger) Service {
	if cfg.Profiles == nil {
		cfg.Profiles = DefaultProfiles()
	}
	return &service{cfg: cfg, completer: completer, logger: logger.With("component", "summarizer.service")}
}

// Summarize runs chunk -> running summary -> final article. Every completion call waits on
// the previous one, and the first failure aborts the run.
func (s *service) Summarize(ctx context.Context, req Request) (Response, error) {
	opts, err := s.resolve(req)
	if err != nil {
		return Response{}, err
	}
	start := time.Now()
	article := Article{Title: strings.TrimSpace(req.Title), Text: req.Text}

	s.logger.Info("summarization started",
		"model", opts.profile.Name,
		"summary_length_words", opts.summaryWords,
		"max_chunk_words", int(MaxChunkWords(opts.summaryWords, opts.profile)),
	)

	var (
		usage      metrics.RunUsage
		running    string
		wordsSoFar int
		index      int
	)
	for chunk := range Chunks(article.Text, opts.summaryWords, opts.profile) {
		chunkWords := wordCount(chunk)
		var prompt string
		if index == 0 {
			prompt, err = buildInitialPrompt(chunk, article.Title, opts.summaryWords)
		} else {
			pct := previousChunkPercentage(wordsSoFar, chunkWords)
			prompt, err = buildContinuationPrompt(chunk, running, pct, article.Title, opts.summaryWords)
		}
		if err != nil {
			return Response{}, err
		}

		running, err = s.complete(ctx, prompt, opts, &usage)
		if err != nil {
			return Response{}, wrapStep(err, fmt.Sprintf("summarize chunk %d", index))
		}
		wordsSoFar += chunkWords
		s.logger.Debug("running summary updated", "chunk", index, "words_so_far", wordsSoFar, "summary", running)
		index++
	}

	prompt, err := buildFinalPrompt(running, article.Title, opts.summaryWords)
	if err != nil {
		return Response{}, err
	}
	final, err := s.complete(ctx, prompt, opts, &usage)
	if err != nil {
		return Response{}, wrapStep(err, "finalize summary")
	}

	duration := time.Since(start)
	s.logger.Info("summarization finished", "chunks", index, "completion_calls", usage.CompletionCalls, "duration_ms", duration.Milliseconds())

	return Response{
		Summary:    final,
		Chunks:     index,
		Model:      opts.profile.Name,
		DurationMs: duration.Milliseconds(),
		Usage:      usage,
	}, nil
}

func (s *service) complete(ctx context.Context, prompt string, opts runOptions, usage *metrics.RunUsage) (string, error) {
	out, err := s.completer.Complete(ctx, prompt, opts.profile, opts.temperature)
	if err != nil {
		return "", err
	}
	usage.Add(s.promptTokens(prompt, opts.profile))
	return out, nil
}

func (s *service) promptTokens(prompt string, profile ModelProfile) int {
	if counter, ok := s.completer.(PromptTokenCounter); ok {
		return counter.PromptTokens(prompt, profile)
	}
	return profile.EstimateTokens(wordCount(prompt))
}

type runOptions struct {
	profile      ModelProfile
	summaryWords int
	temperature  float32
}

// ValidateRequest rejects per-request overrides that no run could accept. Submit paths call it
// before any work is stored so bad options fail the same way on every route.
func ValidateRequest(req Request) error {
	if req.SummaryLengthWords != 0 {
		if err := validateSummaryWords(req.SummaryLengthWords); err != nil {
			return err
		}
	}
	if req.Temperature != nil {
		return validateTemperature(*req.Temperature)
	}
	return nil
}

func validateSummaryWords(words int) error {
	if words <= 1 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "summary length must be greater than one word", nil)
	}
	return nil
}

func validateTemperature(temp float32) error {
	if temp < 0 || temp > 2 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "temperature must be between 0 and 2", nil)
	}
	return nil
}

func (s *service) resolve(req Request) (runOptions, error) {
	opts := runOptions{
		summaryWords: s.cfg.SummaryLengthWords,
		temperature:  s.cfg.Temperature,
	}
	if req.SummaryLengthWords != 0 {
		opts.summaryWords = req.SummaryLengthWords
	}
	if err := validateSummaryWords(opts.summaryWords); err != nil {
		return runOptions{}, err
	}
	if req.Temperature != nil {
		opts.temperature = *req.Temperature
	}
	if err := validateTemperature(opts.temperature); err != nil {
		return runOptions{}, err
	}
	model := s.cfg.Model
	if strings.TrimSpace(req.Model) != "" {
		model = req.Model
	}
	opts.profile = s.cfg.Profiles.Resolve(model)
	return opts, nil
}

// wrapStep adds run context while keeping the completion error code intact.
func wrapStep(err error, step string) error {
	code := apperrors.CodeOf(err)
	if code == "" {
		code = apperrors.CodeLLM
	}
	return apperrors.Wrap(code, step, err)
}
