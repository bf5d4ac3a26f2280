// Package config provides configuration loading for devtrack.
//
// Configuration is assembled from hardcoded defaults, an optional YAML file
// and DEVTRACK_ environment variables, in increasing order of precedence.
// Each section mirrors the settings of one component; the CLI maps sections
// onto the component constructors.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Annotator choices for the extraction section.
const (
	AnnotatorNone  = "none"
	AnnotatorProse = "prose"
)

// Embedding provider choices. Kept in step with the embeddings package.
const (
	EmbeddingsDisabled  = "disabled"
	EmbeddingsFastEmbed = "fastembed"
	EmbeddingsTEI       = "tei"
)

// Config holds the complete devtrack configuration.
type Config struct {
	Matcher        MatcherConfig        `koanf:"matcher"`
	Disambiguation DisambiguationConfig `koanf:"disambiguation"`
	Extraction     ExtractionConfig     `koanf:"extraction"`
	Patterns       PatternsConfig       `koanf:"patterns"`
	Embeddings     EmbeddingsConfig     `koanf:"embeddings"`
	Logging        LoggingConfig        `koanf:"logging"`
}

// MatcherConfig holds task matcher thresholds.
type MatcherConfig struct {
	Threshold     float64 `koanf:"threshold"`
	ManyThreshold float64 `koanf:"many_threshold"`
	TopN          int     `koanf:"top_n"`
	FuzzyFloor    float64 `koanf:"fuzzy_floor"`
	SemanticFloor float64 `koanf:"semantic_floor"`
	Parallel      bool    `koanf:"parallel"`
}

// DisambiguationConfig holds the auto-accept cutoff for single matches.
type DisambiguationConfig struct {
	AutoAccept float64 `koanf:"auto_accept"`
}

// ExtractionConfig selects the linguistic annotator.
type ExtractionConfig struct {
	Annotator string `koanf:"annotator"` // none | prose
}

// PatternsConfig points at an optional rules override file.
type PatternsConfig struct {
	File string `koanf:"file"`
}

// EmbeddingsConfig configures the embedding provider behind the semantic tier.
type EmbeddingsConfig struct {
	Provider string        `koanf:"provider"` // disabled | fastembed | tei
	Model    string        `koanf:"model"`
	BaseURL  string        `koanf:"base_url"`
	CacheDir string        `koanf:"cache_dir"`
	APIKey   Secret        `koanf:"api_key"`
	Timeout  time.Duration `koanf:"timeout"`
	// RateLimit caps TEI requests per second; zero is unlimited.
	RateLimit float64 `koanf:"rate_limit"`
}

// Enabled reports whether a provider should be constructed.
func (e EmbeddingsConfig) Enabled() bool {
	return e.Provider != "" && e.Provider != EmbeddingsDisabled
}

// LoggingConfig holds the logging settings exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Matcher: MatcherConfig{
			Threshold:     0.6,
			ManyThreshold: 0.5,
			TopN:          3,
			FuzzyFloor:    0.4,
			SemanticFloor: 0.3,
		},
		Disambiguation: DisambiguationConfig{
			AutoAccept: 0.8,
		},
		Extraction: ExtractionConfig{
			Annotator: AnnotatorProse,
		},
		Embeddings: EmbeddingsConfig{
			Provider: EmbeddingsDisabled,
			Model:    "BAAI/bge-small-en-v1.5",
			BaseURL:  "http://localhost:8080",
			Timeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true,
	"error": true, "dpanic": true, "panic": true, "fatal": true,
}

// Validate validates the configuration.
//
// Returns an error wrapping ErrInvalidConfig if:
//   - any matcher threshold or floor, or the auto-accept cutoff, is outside [0, 1]
//   - top_n is negative
//   - the annotator, embedding provider, log level or log format is unknown
//   - the TEI base URL is not http(s), its timeout is not positive or its rate limit is negative
//   - the patterns file path escapes its directory
func (c *Config) Validate() error {
	unit := []struct {
		key string
		v   float64
	}{
		{"matcher.threshold", c.Matcher.Threshold},
		{"matcher.many_threshold", c.Matcher.ManyThreshold},
		{"matcher.fuzzy_floor", c.Matcher.FuzzyFloor},
		{"matcher.semantic_floor", c.Matcher.SemanticFloor},
		{"disambiguation.auto_accept", c.Disambiguation.AutoAccept},
	}
	for _, u := range unit {
		if u.v < 0 || u.v > 1 {
			return fmt.Errorf("%w: %s must be within [0, 1], got %v", ErrInvalidConfig, u.key, u.v)
		}
	}
	if c.Matcher.TopN < 0 {
		return fmt.Errorf("%w: matcher.top_n must be >= 0, got %d", ErrInvalidConfig, c.Matcher.TopN)
	}

	switch c.Extraction.Annotator {
	case AnnotatorNone, AnnotatorProse:
	default:
		return fmt.Errorf("%w: extraction.annotator must be %q or %q, got %q",
			ErrInvalidConfig, AnnotatorNone, AnnotatorProse, c.Extraction.Annotator)
	}

	if f := c.Patterns.File; f != "" && strings.Contains(filepath.ToSlash(f), "../") {
		return fmt.Errorf("%w: patterns.file must not contain path traversal: %q", ErrInvalidConfig, f)
	}

	if err := c.Embeddings.validate(); err != nil {
		return err
	}

	if !logLevels[c.Logging.Level] {
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("%w: logging.format must be 'json' or 'console', got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

func (e EmbeddingsConfig) validate() error {
	switch e.Provider {
	case EmbeddingsDisabled, "":
		return nil
	case EmbeddingsFastEmbed:
		if e.Model == "" {
			return fmt.Errorf("%w: embeddings.model required for fastembed", ErrInvalidConfig)
		}
		return nil
	case EmbeddingsTEI:
		u, err := url.Parse(e.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: embeddings.base_url must be an http(s) URL, got %q", ErrInvalidConfig, e.BaseURL)
		}
		if e.Timeout <= 0 {
			return fmt.Errorf("%w: embeddings.timeout must be positive", ErrInvalidConfig)
		}
		if e.RateLimit < 0 {
			return fmt.Errorf("%w: embeddings.rate_limit must be >= 0", ErrInvalidConfig)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown embeddings.provider %q", ErrInvalidConfig, e.Provider)
	}
}
