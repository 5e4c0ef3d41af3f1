// Package factory builds the chat adapter matching the configured
// provider's API type.
package factory

import (
	"context"
	"fmt"

	"github.com/dkrasnov/tvcut/internal/config"
	"github.com/dkrasnov/tvcut/internal/ports"
	"github.com/dkrasnov/tvcut/internal/ports/adapters/gemini"
	"github.com/dkrasnov/tvcut/internal/ports/adapters/openaisdk"
	"github.com/dkrasnov/tvcut/internal/ports/adapters/relay"
)

func New(ctx context.Context, cfg config.Config) (ports.ChatCompleter, error) {
	p, err := cfg.ProviderInfo()
	if err != nil {
		return nil, err
	}

	switch p.APIType {
	case config.APITypeGemini:
		return gemini.New(ctx, cfg.APIKey)
	case config.APITypeOpenAI:
		return openaisdk.New(cfg.APIKey, cfg.BaseURL), nil
	case config.APITypeRelay:
		if err := relay.ValidateBaseURL(cfg.BaseURL, nil); err != nil {
			return nil, err
		}
		return relay.New(cfg.APIKey, cfg.BaseURL, p.ExtraHeaders), nil
	default:
		return nil, fmt.Errorf("provider %s has unsupported api type %q", p.ID, p.APIType)
	}
}
