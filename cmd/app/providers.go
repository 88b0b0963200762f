package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-summarizer/internal/domain/auth"
	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	"github.com/yanqian/ai-summarizer/internal/infra/config"
	"github.com/yanqian/ai-summarizer/internal/infra/credentials"
	"github.com/yanqian/ai-summarizer/internal/infra/llm/completion"
	"github.com/yanqian/ai-summarizer/internal/infra/queue"
	"github.com/yanqian/ai-summarizer/internal/infra/runrepo"
	"github.com/yanqian/ai-summarizer/internal/infra/storage"
)

func provideSummaryConfig(cfg *config.Config) summarizer.Config {
	extra := make(summarizer.ProfileRegistry, len(cfg.LLM.Profiles))
	for _, p := range cfg.LLM.Profiles {
		extra[p.Name] = summarizer.ModelProfile{Name: p.Name, MaxTokens: p.MaxTokens, TokensPerWord: p.TokensPerWord}
	}
	return summarizer.Config{
		SummaryLengthWords: cfg.Summary.LengthWords,
		Temperature:        cfg.LLM.Temperature,
		Model:              cfg.LLM.Model,
		Profiles:           summarizer.DefaultProfiles().Merge(extra),
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		TokenTTL: cfg.Auth.TokenTTL,
	}
}

func provideBackend(cfg *config.Config, logger *slog.Logger) (completion.Backend, error) {
	apiKey := cfg.LLM.APIKey
	if apiKey == "" && cfg.LLM.APIKeyFile != "" {
		key, err := credentials.LoadAPIKey(cfg.LLM.APIKeyFile, cfg.LLM.Provider)
		if err != nil {
			return nil, err
		}
		apiKey = key
	}
	logger.Info("completion backend selected", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model, "tokenizer", cfg.LLM.Tokenizer)
	return completion.NewBackend(cfg.LLM.Provider, apiKey, cfg.LLM.BaseURL)
}

func provideTokenEstimator(cfg *config.Config) completion.TokenEstimator {
	return completion.NewEstimator(cfg.LLM.Tokenizer)
}

func provideRunRepository(cfg *config.Config, logger *slog.Logger) (summarizer.RunRepository, func()) {
	fallback := runrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Store.Postgres.DSN)
	if dsn == "" {
		logger.Info("store postgres dsn not set, using memory run repository")
		return fallback, func() {}
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory run repository", "error", err)
		return fallback, func() {}
	}
	if cfg.Store.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Store.Postgres.MaxConns
	}
	if cfg.Store.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Store.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory run repository", "error", err)
		return fallback, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory run repository", "error", err)
		pool.Close()
		return fallback, func() {}
	}
	repo := runrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory run repository", "error", err)
		pool.Close()
		return fallback, func() {}
	}
	logger.Info("postgres run repository enabled")
	return repo, pool.Close
}

func provideArticleStorage(cfg *config.Config, logger *slog.Logger) (summarizer.ArticleStorage, error) {
	if cfg.Storage.Driver != config.StorageS3 {
		return storage.NewMemoryStorage(), nil
	}
	s3, err := storage.NewS3Storage(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.Region, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("s3 article storage enabled", "bucket", cfg.Storage.Bucket)
	return s3, nil
}

// immediateDrainTimeout bounds how long shutdown waits for in-process runs.
const immediateDrainTimeout = 2 * time.Minute

func provideJobQueue(cfg *config.Config, logger *slog.Logger) (queue.HandlerQueue, func(), error) {
	if cfg.Jobs.Queue != config.QueueValkey {
		q := queue.NewImmediateQueue(nil)
		return q, func() {
			ctx, cancel := context.WithTimeout(context.Background(), immediateDrainTimeout)
			defer cancel()
			if err := q.Drain(ctx); err != nil {
				logger.Warn("background runs still in flight at shutdown", "error", err)
			}
		}, nil
	}
	opt, err := buildValkeyOptions(cfg.Jobs.Valkey.Addr)
	if err != nil {
		return nil, nil, err
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, nil, err
	}
	q := queue.NewValkeyQueue(client, cfg.Jobs.Valkey.Key, logger)
	logger.Info("valkey job queue enabled", "addr", cfg.Jobs.Valkey.Addr, "key", cfg.Jobs.Valkey.Key)
	return q, func() {
		q.Close()
		client.Close()
	}, nil
}

// provideRunService registers the run service as the queue's job handler.
func provideRunService(svc summarizer.Service, runs summarizer.RunRepository, articles summarizer.ArticleStorage, jobs queue.HandlerQueue, logger *slog.Logger) *summarizer.RunService {
	runSvc := summarizer.NewRunService(svc, runs, articles, jobs, logger)
	jobs.SetHandler(runSvc.HandleJob)
	return runSvc
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
