package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names accepted by NewProvider.
const (
	ProviderFastEmbed = "fastembed"
	ProviderTEI       = "tei"
)

var (
	ErrEmptyInput      = errors.New("empty or nil input texts")
	ErrInvalidConfig   = errors.New("invalid embeddings configuration")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Embedder turns task texts and statements into vectors.
type Embedder interface {
	// EmbedDocuments embeds task texts, one vector per text in order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds the statement being matched.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Provider is an Embedder built once at startup and closed on exit.
type Provider interface {
	Embedder
	Dimension() int
	Close() error
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider string // fastembed | tei
	Model    string
	// CacheDir is used by fastembed.
	CacheDir string
	// BaseURL, APIKey, Timeout and RateLimit are used by tei.
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64
}

// NewProvider builds the provider named by cfg.Provider; empty means fastembed.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderFastEmbed, "":
		return NewFastEmbedProvider(FastEmbedConfig{Model: cfg.Model, CacheDir: cfg.CacheDir})
	case ProviderTEI:
		return NewTEIClient(TEIConfig{
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			APIKey:    cfg.APIKey,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			Burst:     1,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
