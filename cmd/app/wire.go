//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/ai-summarizer/internal/bootstrap"
	"github.com/yanqian/ai-summarizer/internal/domain/auth"
	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	"github.com/yanqian/ai-summarizer/internal/infra/config"
	"github.com/yanqian/ai-summarizer/internal/infra/llm/completion"
	httpiface "github.com/yanqian/ai-summarizer/internal/interface/http"
	"github.com/yanqian/ai-summarizer/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideSummaryConfig,
		provideAuthConfig,
		provideBackend,
		provideTokenEstimator,
		provideRunRepository,
		provideArticleStorage,
		provideJobQueue,
		provideRunService,
		completion.NewAdapter,
		summarizer.NewService,
		auth.NewService,
		wire.Bind(new(summarizer.Completer), new(*completion.Adapter)),
		wire.Bind(new(httpiface.RunService), new(*summarizer.RunService)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
