package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/devtrack/internal/config"
	"github.com/fyrsmithlabs/devtrack/internal/disambiguate"
	"github.com/fyrsmithlabs/devtrack/internal/embeddings"
	"github.com/fyrsmithlabs/devtrack/internal/extraction"
	"github.com/fyrsmithlabs/devtrack/internal/logging"
	"github.com/fyrsmithlabs/devtrack/internal/matcher"
	"github.com/fyrsmithlabs/devtrack/internal/patterns"
	"github.com/fyrsmithlabs/devtrack/internal/similarity"
)

// app holds the components built from configuration for one invocation.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	extractor *extraction.Extractor
	matcher   *matcher.Matcher
	decide    disambiguate.Options
	provider  embeddings.Provider
	requestID string
}

// newApp loads configuration and wires the pipeline. Logs are written to logOut.
func newApp(opts *rootOptions, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}, zapcore.AddSync(logOut))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a := &app{
		cfg:       cfg,
		logger:    logger,
		decide:    disambiguate.Options{AutoAccept: cfg.Disambiguation.AutoAccept},
		requestID: uuid.NewString(),
	}
	ctx := a.requestContext(context.Background())

	lib := patterns.Default()
	if cfg.Patterns.File != "" {
		lib, err = patterns.LoadFile(cfg.Patterns.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load patterns: %w", err)
		}
		logger.Debug(ctx, "loaded pattern overrides", zap.String("file", cfg.Patterns.File))
	}

	a.extractor = extraction.NewExtractor(lib, a.annotator(ctx), logger.Underlying())

	semantic := a.semantic(ctx)
	m, err := matcher.New(lib, semantic, matcher.Config{
		Threshold:     cfg.Matcher.Threshold,
		ManyThreshold: cfg.Matcher.ManyThreshold,
		TopN:          cfg.Matcher.TopN,
		FuzzyFloor:    cfg.Matcher.FuzzyFloor,
		SemanticFloor: cfg.Matcher.SemanticFloor,
		Parallel:      cfg.Matcher.Parallel,
	}, logger.Underlying())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create matcher: %w", err)
	}
	a.matcher = m
	return a, nil
}

// semantic builds the embedding provider. A provider that cannot start
// disables the semantic tier instead of failing the command.
func (a *app) semantic(ctx context.Context) similarity.Semantic {
	emb := a.cfg.Embeddings
	if !emb.Enabled() {
		a.logger.Debug(ctx, "semantic tier disabled by configuration")
		return similarity.Unavailable()
	}

	provider, err := embeddings.NewProvider(embeddings.ProviderConfig{
		Provider:  emb.Provider,
		Model:     emb.Model,
		BaseURL:   emb.BaseURL,
		APIKey:    emb.APIKey.Value(),
		CacheDir:  emb.CacheDir,
		Timeout:   emb.Timeout,
		RateLimit: emb.RateLimit,
	})
	if err != nil {
		a.logger.Warn(ctx, "embedding provider unavailable, semantic tier disabled",
			zap.String("provider", emb.Provider),
			zap.Error(err))
		return similarity.Unavailable()
	}

	a.provider = provider
	a.logger.Info(ctx, "embedding provider ready",
		zap.String("provider", emb.Provider),
		zap.String("model", emb.Model),
		zap.Int("dimension", provider.Dimension()),
		zap.Stringer("api_key", emb.APIKey))
	return similarity.Available(provider)
}

// annotator loads the configured annotator once. A prose model that fails
// to load leaves extraction on the rule tables alone.
func (a *app) annotator(ctx context.Context) extraction.Annotator {
	if a.cfg.Extraction.Annotator != config.AnnotatorProse {
		return extraction.NoOpAnnotator{}
	}
	p, err := extraction.NewProseAnnotator()
	if err != nil {
		a.logger.Warn(ctx, "prose annotator unavailable, using rule tables only", zap.Error(err))
		return extraction.NoOpAnnotator{}
	}
	return p
}

// requestContext tags ctx with the invocation's request id and the app logger.
func (a *app) requestContext(ctx context.Context) context.Context {
	ctx = logging.WithRequestID(ctx, a.requestID)
	return logging.WithLogger(ctx, a.logger)
}

// Close releases the embedding provider and flushes logs.
func (a *app) Close() {
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Warn(a.requestContext(context.Background()), "failed to close embedding provider", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
