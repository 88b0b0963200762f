package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	"github.com/yanqian/ai-summarizer/internal/infra/article"
	"github.com/yanqian/ai-summarizer/internal/infra/credentials"
	"github.com/yanqian/ai-summarizer/internal/infra/llm/completion"
	"github.com/yanqian/ai-summarizer/pkg/logger"
)

type summarizeOptions struct {
	articlePath string
	url         string
	keyPath     string
	title       string
	length      int
	temperature float32
	model       string
	provider    string
	baseURL     string
	tokenizer   string
}

func newRootCmd() *cobra.Command {
	opts := &summarizeOptions{}
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a long article with a completion model",
		Long: "Splits the article into chunks that fit the model's context window, folds each chunk " +
			"into a running bullet summary, then writes a final narrative summary to stdout.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummarize(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.articlePath, "article_file_path", "", "Path to a plain text article")
	flags.StringVar(&opts.url, "url", "", "Fetch the article from a web page instead of a file")
	flags.StringVar(&opts.keyPath, "open_ai_key_file_path", "", "Path to the API key file (bare key or TOML [llm] api_key); falls back to LLM_API_KEY")
	flags.StringVar(&opts.title, "title", "", "Override the article title")
	flags.IntVar(&opts.length, "length", 400, "Target summary length in words")
	flags.Float32Var(&opts.temperature, "temperature", 0.6, "Sampling temperature")
	flags.StringVar(&opts.model, "model", summarizer.DefaultModel, "Completion model")
	flags.StringVar(&opts.provider, "provider", "openai", "Completion backend: openai, chatgpt, anthropic or echo")
	flags.StringVar(&opts.baseURL, "base_url", "", "Override the provider API base URL")
	flags.StringVar(&opts.tokenizer, "tokenizer", "words", "Prompt token estimator: words or tiktoken")
	cmd.MarkFlagsMutuallyExclusive("article_file_path", "url")
	cmd.MarkFlagsOneRequired("article_file_path", "url")

	cmd.AddCommand(newTokenCmd())
	return cmd
}

func runSummarize(cmd *cobra.Command, opts *summarizeOptions) error {
	ctx := cmd.Context()
	log := logger.NewWithWriter(cmd.ErrOrStderr())

	var (
		doc summarizer.Article
		err error
	)
	if opts.url != "" {
		doc, err = article.NewFetcher(nil).Fetch(ctx, opts.url)
	} else {
		doc, err = article.LoadFile(opts.articlePath)
	}
	if err != nil {
		return err
	}
	if opts.title != "" {
		doc.Title = opts.title
	}

	apiKey, err := resolveAPIKey(opts)
	if err != nil {
		return err
	}
	backend, err := completion.NewBackend(opts.provider, apiKey, opts.baseURL)
	if err != nil {
		return err
	}
	adapter := completion.NewAdapter(backend, completion.NewEstimator(opts.tokenizer), log)
	svc := summarizer.NewService(summarizer.Config{
		SummaryLengthWords: opts.length,
		Temperature:        opts.temperature,
		Model:              opts.model,
	}, adapter, log)

	resp, err := svc.Summarize(ctx, summarizer.Request{Title: doc.Title, Text: doc.Text})
	if err != nil {
		return err
	}
	log.Info("summary written", "chunks", resp.Chunks, "completion_calls", resp.Usage.CompletionCalls, "duration_ms", resp.DurationMs)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Summary)
	return err
}

func resolveAPIKey(opts *summarizeOptions) (string, error) {
	if strings.EqualFold(opts.provider, "echo") {
		return "", nil
	}
	if opts.keyPath != "" {
		return credentials.LoadAPIKey(opts.keyPath, opts.provider)
	}
	if key := strings.TrimSpace(os.Getenv("LLM_API_KEY")); key != "" {
		return key, nil
	}
	return "", errors.New("an API key is required: pass --open_ai_key_file_path or set LLM_API_KEY")
}
