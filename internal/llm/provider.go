package llm

import (
	"errors"
	"fmt"
	"log/slog"
)

// Providers accepted by New
const (
	ProviderOpenAI   = "openai"
	ProviderDisabled = "disabled"
)

// ErrUnknownProvider is returned by New for an unsupported provider name
var ErrUnknownProvider = errors.New("unknown generator provider")

// New returns the Generator for provider
func New(provider string, cfg OpenAIConfig, logger *slog.Logger) (Generator, error) {
	switch provider {
	case ProviderOpenAI:
		c, err := NewOpenAIClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderDisabled, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}
