//go:build cgo

package embeddings

import (
	"context"
	"fmt"
	"sync"
	"time"

	fastembed "github.com/anush008/fastembed-go"
)

// FastEmbedConfig configures the local ONNX provider.
type FastEmbedConfig struct {
	Model string
	// CacheDir holds downloaded model files; empty uses DefaultCacheDir.
	CacheDir string
	// MaxLength truncates inputs, in tokens. Zero uses 256.
	MaxLength int
}

// FastEmbedProvider embeds text in-process with fastembed-go.
type FastEmbedProvider struct {
	mu      sync.RWMutex
	model   *fastembed.FlagEmbedding
	info    Model
	metrics *Metrics
}

var fastembedModels = map[string]fastembed.EmbeddingModel{
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
}

// taskBatchSize bounds how many task texts go through the model at once.
const taskBatchSize = 64

// NewFastEmbedProvider loads the model, downloading it into the cache on
// first use.
func NewFastEmbedProvider(cfg FastEmbedConfig) (*FastEmbedProvider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	info, ok := LookupModel(cfg.Model)
	if !ok {
		return nil, fmt.Errorf("%w: fastembed does not support model %q", ErrInvalidConfig, cfg.Model)
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir()
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = 256
	}

	quiet := false
	model, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                fastembedModels[info.Name],
		CacheDir:             cfg.CacheDir,
		MaxLength:            cfg.MaxLength,
		ShowDownloadProgress: &quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("loading fastembed model %s: %w", info.Name, err)
	}

	return &FastEmbedProvider{
		model:   model,
		info:    info,
		metrics: NewMetrics(ProviderFastEmbed, info.Name),
	}, nil
}

// EmbedDocuments embeds task texts as passages.
func (p *FastEmbedProvider) EmbedDocuments(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	start := time.Now()
	defer func() { p.metrics.Record(ctx, opTasks, len(texts), time.Since(start), err) }()

	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	vectors, err = p.model.PassageEmbed(texts, taskBatchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vectors, nil
}

// EmbedQuery embeds a work statement as a query.
func (p *FastEmbedProvider) EmbedQuery(ctx context.Context, text string) (vector []float32, err error) {
	start := time.Now()
	defer func() { p.metrics.Record(ctx, opStatement, 1, time.Since(start), err) }()

	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	vector, err = p.model.QueryEmbed(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vector, nil
}

func (p *FastEmbedProvider) Dimension() int {
	return p.info.Dimension
}

// Close releases the ONNX session. The provider is unusable afterwards.
func (p *FastEmbedProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model == nil {
		return nil
	}
	err := p.model.Destroy()
	p.model = nil
	return err
}

var _ Provider = (*FastEmbedProvider)(nil)
