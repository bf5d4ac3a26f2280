package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/devtrack/internal/corpus"
	"github.com/fyrsmithlabs/devtrack/internal/logging"
	"github.com/fyrsmithlabs/devtrack/internal/patterns"
	"github.com/fyrsmithlabs/devtrack/internal/similarity"
)

// Strategy is one matching tier.
type Strategy interface {
	// Name identifies the tier in logs and metrics.
	Name() string
	// Best returns the tier's single candidate, or nil.
	Best(ctx context.Context, text string, tasks []corpus.Task) *MatchResult
	// All returns every candidate above the tier's floor, in corpus order.
	All(ctx context.Context, text string, tasks []corpus.Task) []MatchResult
}

// scoreTasks applies f to every task, concurrently when parallel is set.
// Results are in corpus order either way.
func scoreTasks[R any](parallel bool, tasks []corpus.Task, f func(*corpus.Task) R) []R {
	if parallel {
		return iter.Map(tasks, f)
	}
	out := make([]R, len(tasks))
	for i := range tasks {
		out[i] = f(&tasks[i])
	}
	return out
}

type exactStrategy struct {
	lib *patterns.Library
}

func (exactStrategy) Name() string { return string(MatchExact) }

func (s exactStrategy) Best(_ context.Context, text string, tasks []corpus.Task) *MatchResult {
	for _, token := range s.lib.TicketTokens(text) {
		needle := strings.ToLower(token)
		for i := range tasks {
			if strings.Contains(strings.ToLower(tasks[i].ID), needle) {
				return &MatchResult{
					Task:       &tasks[i],
					Confidence: 1.0,
					MatchType:  MatchExact,
					MatchField: FieldID,
					Reason:     "Exact ID match: " + token,
				}
			}
		}
	}
	return nil
}

func (s exactStrategy) All(ctx context.Context, text string, tasks []corpus.Task) []MatchResult {
	if m := s.Best(ctx, text, tasks); m != nil {
		return []MatchResult{*m}
	}
	return nil
}

type fuzzyStrategy struct {
	floor    float64
	parallel bool
}

func (fuzzyStrategy) Name() string { return string(MatchFuzzy) }

func (s fuzzyStrategy) scores(text string, tasks []corpus.Task) []similarity.FuzzyScore {
	input := strings.ToLower(text)
	return scoreTasks(s.parallel, tasks, func(t *corpus.Task) similarity.FuzzyScore {
		return similarity.Fuzzy(input, strings.ToLower(t.Title))
	})
}

func fuzzyResult(task *corpus.Task, score similarity.FuzzyScore, reason string) MatchResult {
	matchType := MatchFuzzy
	if score.PartialWins() {
		matchType = MatchPartial
	}
	return MatchResult{
		Task:       task,
		Confidence: score.Best(),
		MatchType:  matchType,
		MatchField: FieldTitle,
		Reason:     fmt.Sprintf("%s (score: %.2f)", reason, score.Best()),
	}
}

func (s fuzzyStrategy) Best(_ context.Context, text string, tasks []corpus.Task) *MatchResult {
	if len(tasks) == 0 {
		return nil
	}
	scores := s.scores(text, tasks)
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Best() > scores[best].Best() {
			best = i
		}
	}
	m := fuzzyResult(&tasks[best], scores[best], "Fuzzy match on title")
	return &m
}

func (s fuzzyStrategy) All(_ context.Context, text string, tasks []corpus.Task) []MatchResult {
	var out []MatchResult
	for i, score := range s.scores(text, tasks) {
		if score.Best() >= s.floor {
			out = append(out, fuzzyResult(&tasks[i], score, "Fuzzy match"))
		}
	}
	return out
}

type semanticStrategy struct {
	semantic similarity.Semantic
	floor    float64
	logger   *zap.Logger
	metrics  *Metrics
}

func (semanticStrategy) Name() string { return string(MatchSemantic) }

// scores embeds the input and every task text. Failures are logged and treated
// as no semantic signal.
func (s semanticStrategy) scores(ctx context.Context, text string, tasks []corpus.Task) []float64 {
	if !s.semantic.IsAvailable() || len(tasks) == 0 {
		return nil
	}
	docs := make([]string, len(tasks))
	for i := range tasks {
		docs[i] = tasks[i].Text()
	}
	scores, err := s.semantic.Score(ctx, text, docs)
	if err != nil {
		logging.For(ctx, s.logger).Warn("semantic scoring failed, skipping tier",
			zap.Int("tasks", len(tasks)),
			zap.Error(err),
		)
		s.metrics.RecordSemanticError(ctx)
		return nil
	}
	return scores
}

func semanticResult(task *corpus.Task, score float64) MatchResult {
	return MatchResult{
		Task:       task,
		Confidence: score,
		MatchType:  MatchSemantic,
		MatchField: FieldTitleDescription,
		Reason:     fmt.Sprintf("Semantic similarity (score: %.2f)", score),
	}
}

func (s semanticStrategy) Best(ctx context.Context, text string, tasks []corpus.Task) *MatchResult {
	scores := s.scores(ctx, text, tasks)
	if len(scores) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	m := semanticResult(&tasks[best], scores[best])
	return &m
}

func (s semanticStrategy) All(ctx context.Context, text string, tasks []corpus.Task) []MatchResult {
	var out []MatchResult
	for i, score := range s.scores(ctx, text, tasks) {
		if score >= s.floor {
			out = append(out, semanticResult(&tasks[i], score))
		}
	}
	return out
}
