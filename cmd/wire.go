package main

import (
	"context"
	"fmt"

	"verynews/agent"
	"verynews/config"
	"verynews/crawler"
	"verynews/pkg/llm"
	"verynews/search"

	"go.uber.org/zap"
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newOrchestrator(cfg *config.Config, logger *zap.Logger) (*search.Orchestrator, error) {
	// =========
	// HTTP
	// =========
	httpClient, err := crawler.NewHTTPClient(cfg.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	// =========
	// Content fetcher
	// =========
	fetcherCfg := crawler.DefaultConfig()
	fetcherCfg.MaxPDFPages = cfg.MaxPDFPages
	fetcherCfg.HTMLMode = cfg.HTMLExtractor
	fetcherCfg.Retry.Timeout = cfg.FetchTimeout
	fetcher := crawler.NewFetcher(httpClient, logger, fetcherCfg)

	// =========
	// Search strategy
	// =========
	executor, err := search.NewExecutor(search.EngineConfig{
		Backend:      search.Strategy(cfg.SearchBackend),
		GoogleAPIKey: cfg.GoogleAPIKey,
		GoogleCX:     cfg.GoogleCX,
		SerpAPIKey:   cfg.SerpAPIKey,
		ProxyURL:     cfg.ProxyURL,
	}, httpClient, logger)
	if err != nil {
		return nil, err
	}

	return search.NewOrchestrator(executor, fetcher, logger), nil
}

func newJudge(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*agent.Judge, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}

	orchestrator, err := newOrchestrator(cfg, logger)
	if err != nil {
		return nil, err
	}

	// =========
	// LLM
	// =========
	client, err := llm.New(ctx, llm.Config{
		Provider:      cfg.LLMProvider,
		Model:         cfg.Model,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Temperature:   cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	return agent.NewJudge(client, orchestrator, agent.Config{
		MaxResults:         cfg.MaxResults,
		MaxTokensPerSource: cfg.MaxTokensPerSource,
		IncludeRawContent:  cfg.IncludeRawContent,
		TrustedSites:       cfg.TrustedSites,
	}, logger), nil
}
