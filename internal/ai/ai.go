package ai

import (
	"context"
	"fmt"
)

// Embedder turns texts into vectors, one per text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ToCRepairer cleans up table-of-contents lines scraped from page text.
type ToCRepairer interface {
	RepairToC(ctx context.Context, raw []string) ([]string, error)
}

type Noop struct{}

func (Noop) RepairToC(ctx context.Context, raw []string) ([]string, error) { return raw, nil }

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// EmbedderOptions selects and configures an embedding backend.
type EmbedderOptions struct {
	Provider   string
	APIKey     string
	Model      string
	Dimensions int
}

func NewEmbedder(ctx context.Context, opts EmbedderOptions) (Embedder, error) {
	switch opts.Provider {
	case ProviderOpenAI, "":
		return NewOpenAI(opts.APIKey, opts.Model, opts.Dimensions)
	case ProviderGemini:
		g, err := NewGemini(ctx, opts.APIKey, "")
		if err != nil {
			return nil, err
		}
		g.EmbedModel = opts.Model
		g.Dimensions = opts.Dimensions
		return g, nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
}
