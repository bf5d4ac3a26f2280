// Package matcher finds the task a free-text statement refers to.
//
// Tiers run in a fixed order: exact ticket id, fuzzy title similarity and,
// when an embedder is configured, semantic similarity of title and
// description. A Matcher holds no per-request state and is safe for
// concurrent use.
package matcher

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/devtrack/internal/corpus"
	"github.com/fyrsmithlabs/devtrack/internal/logging"
	"github.com/fyrsmithlabs/devtrack/internal/patterns"
	"github.com/fyrsmithlabs/devtrack/internal/similarity"
)

// Matcher scores statements against a task corpus.
type Matcher struct {
	tiers   []Strategy
	cfg     Config
	logger  *zap.Logger
	metrics *Metrics
}

// New builds a matcher. A nil lib uses the default pattern library and a nil
// logger discards logs. Pass similarity.Unavailable() to run lexical tiers only.
func New(lib *patterns.Library, semantic similarity.Semantic, cfg Config, logger *zap.Logger) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lib == nil {
		lib = patterns.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Matcher{
		cfg:     cfg,
		logger:  logger,
		metrics: NewMetrics(logger),
	}
	m.tiers = []Strategy{
		exactStrategy{lib: lib},
		fuzzyStrategy{floor: cfg.FuzzyFloor, parallel: cfg.Parallel},
	}
	if semantic.IsAvailable() {
		m.tiers = append(m.tiers, semanticStrategy{
			semantic: semantic,
			floor:    cfg.SemanticFloor,
			logger:   logger,
			metrics:  m.metrics,
		})
	}
	return m, nil
}

// Config returns the matcher's configuration.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Tiers lists the active tier names in evaluation order.
func (m *Matcher) Tiers() []string {
	names := make([]string, len(m.tiers))
	for i, t := range m.tiers {
		names[i] = t.Name()
	}
	return names
}

// MatchOne returns the first tier candidate reaching threshold. When none
// does, it returns the best fuzzy candidate so the caller can ask for
// confirmation. It returns nil only for an empty corpus.
func (m *Matcher) MatchOne(ctx context.Context, text string, tasks []corpus.Task, threshold float64) *MatchResult {
	start := time.Now()
	result := m.matchOne(ctx, text, tasks, threshold)

	tier := tierNone
	if result != nil {
		tier = string(result.MatchType)
		logging.For(ctx, m.logger).Debug("matched task",
			zap.String("task_id", result.Task.ID),
			zap.String("match_type", tier),
			zap.Float64("confidence", result.Confidence),
			zap.Bool("below_threshold", result.Confidence < threshold),
		)
	}
	m.metrics.RecordMatch(ctx, "one", tier, time.Since(start))
	return result
}

func (m *Matcher) matchOne(ctx context.Context, text string, tasks []corpus.Task, threshold float64) *MatchResult {
	if len(tasks) == 0 {
		return nil
	}
	var fallback *MatchResult
	for _, tier := range m.tiers {
		candidate := tier.Best(ctx, text, tasks)
		if candidate == nil {
			continue
		}
		if candidate.Confidence >= threshold {
			return candidate
		}
		if fallback == nil {
			fallback = candidate
		}
	}
	return fallback
}

// MatchMany returns up to topN candidates with confidence at least threshold,
// highest first and one per task id. An exact id hit is returned alone.
// topN of zero or less returns every candidate.
func (m *Matcher) MatchMany(ctx context.Context, text string, tasks []corpus.Task, topN int, threshold float64) []MatchResult {
	start := time.Now()
	results := m.matchMany(ctx, text, tasks, topN, threshold)

	tier := tierNone
	if len(results) > 0 {
		tier = string(results[0].MatchType)
	}
	logging.For(ctx, m.logger).Debug("ranked tasks",
		zap.Int("corpus_size", len(tasks)),
		zap.Int("results", len(results)),
		zap.String("top_match_type", tier),
	)
	m.metrics.RecordMatch(ctx, "many", tier, time.Since(start))
	return results
}

func (m *Matcher) matchMany(ctx context.Context, text string, tasks []corpus.Task, topN int, threshold float64) []MatchResult {
	if len(tasks) == 0 {
		return []MatchResult{}
	}

	var candidates []MatchResult
	for _, tier := range m.tiers {
		found := tier.All(ctx, text, tasks)
		if tier.Name() == string(MatchExact) {
			if len(found) > 0 {
				return found
			}
			continue
		}
		candidates = append(candidates, found...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	seen := make(map[string]bool, len(candidates))
	out := []MatchResult{}
	for _, c := range candidates {
		if seen[c.Task.ID] || c.Confidence < threshold {
			continue
		}
		seen[c.Task.ID] = true
		out = append(out, c)
		if topN > 0 && len(out) >= topN {
			break
		}
	}
	return out
}
