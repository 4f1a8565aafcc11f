// Package ai wires the configured model provider.
package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/infrastructure/ai/gemini"
	"github.com/handsapp/backend/internal/infrastructure/ai/mock"
	"github.com/handsapp/backend/internal/infrastructure/ai/openai"
	"github.com/handsapp/backend/internal/infrastructure/config"
	"github.com/handsapp/backend/internal/ports/outbound"
)

// NewProvider creates the AI provider selected by configuration.
func NewProvider(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (outbound.AIProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewClient(cfg, logger), nil
	case "gemini":
		return gemini.NewClient(ctx, cfg, logger)
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
