package matcher

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate and New for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid matcher config")

// Config tunes matching thresholds.
type Config struct {
	// Threshold is the default confidence a single match must reach.
	Threshold float64 `koanf:"threshold"`
	// ManyThreshold is the default cutoff for ranked candidates.
	ManyThreshold float64 `koanf:"many_threshold"`
	// TopN is the default number of ranked candidates. Zero or less is unlimited.
	TopN int `koanf:"top_n"`
	// FuzzyFloor is the lowest fuzzy score kept as a ranked candidate.
	FuzzyFloor float64 `koanf:"fuzzy_floor"`
	// SemanticFloor is the lowest semantic score kept as a ranked candidate.
	SemanticFloor float64 `koanf:"semantic_floor"`
	// Parallel scores tasks concurrently. Output order is unaffected.
	Parallel bool `koanf:"parallel"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.6,
		ManyThreshold: 0.5,
		TopN:          3,
		FuzzyFloor:    0.4,
		SemanticFloor: 0.3,
	}
}

// Validate checks every threshold lies in [0,1].
func (c Config) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"threshold", c.Threshold},
		{"many_threshold", c.ManyThreshold},
		{"fuzzy_floor", c.FuzzyFloor},
		{"semantic_floor", c.SemanticFloor},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}
	return nil
}
