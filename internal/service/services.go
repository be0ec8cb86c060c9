// Package service provides the business logic layer for tally.
// It wires storage, the generator and the analysis pipeline together,
// providing one API for the CLI, HTTP and TUI frontends.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/llm"
	"github.com/xolan/tally/internal/storage"
)

// Services holds all service instances used by the application
type Services struct {
	Insights *InsightsService
	Stats    *StatsService
	Config   *ConfigService
	Store    storage.Store
}

// NewServices opens the configured store and generator and builds every service
func NewServices(ctx context.Context, configPath string, cfg config.Config, logger *slog.Logger) (*Services, error) {
	store, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	generator, err := NewGenerator(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return NewServicesWith(store, generator, configPath, cfg, logger), nil
}

// NewServicesWith builds services over an existing store and generator (useful for testing)
func NewServicesWith(store storage.Store, generator llm.Generator, configPath string, cfg config.Config, logger *slog.Logger) *Services {
	return &Services{
		Insights: NewInsightsService(store, generator, cfg, logger),
		Stats:    NewStatsService(store, cfg),
		Config:   NewConfigService(configPath, cfg),
		Store:    store,
	}
}

// NewGenerator builds the generator selected by cfg.Generator.Provider.
// An openai provider without an API key degrades to the disabled generator.
func NewGenerator(cfg config.Config, logger *slog.Logger) (llm.Generator, error) {
	provider := cfg.Generator.Provider
	apiKey := cfg.APIKey()
	if provider == llm.ProviderOpenAI && apiKey == "" {
		if logger != nil {
			logger.Warn("no generator API key found, analysis is disabled", "env", cfg.Generator.APIKeyEnv)
		}
		provider = llm.ProviderDisabled
	}

	generator, err := llm.New(provider, llm.OpenAIConfig{
		APIKey:      apiKey,
		BaseURL:     cfg.Generator.BaseURL,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
		MaxRetries:  cfg.Generator.MaxRetries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	return generator, nil
}

// Close releases the store
func (s *Services) Close() error {
	return s.Store.Close()
}
