package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/devtrack/internal/corpus"
	"github.com/fyrsmithlabs/devtrack/internal/disambiguate"
	"github.com/fyrsmithlabs/devtrack/internal/extraction"
	"github.com/fyrsmithlabs/devtrack/internal/matcher"
)

type matchOptions struct {
	corpora   []string
	source    string
	many      bool
	top       int
	threshold float64
}

// matchOutput is printed by match and demo.
type matchOutput struct {
	Input    string                  `json:"input"`
	Signal   extraction.ParsedSignal `json:"signal"`
	Matches  []matcher.MatchResult   `json:"matches"`
	Decision disambiguate.Decision   `json:"decision"`
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match <text...>",
		Short: "Find the task a work statement refers to",
		Long: `Match a work statement against a task corpus and print the candidates together
with the disambiguation decision.

Corpus files hold a YAML or JSON list of tasks, a mapping with a "tasks" key,
or (for .toml files) a [[tasks]] array. Each --corpus is registered as a
source named after the file, or use name=path to pick the name. Without
--corpus the built-in sample tasks are used.

Examples:
  # Best single match
  devtrack match "working on authentication issues" --corpus jira=tasks.yaml

  # Ranked candidates from one source
  devtrack match "profile page" --corpus jira=jira.yaml --corpus gh=github.json --source gh --many --top 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, root, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringArrayVar(&opts.corpora, "corpus", nil, "task file as path or name=path (repeatable)")
	cmd.Flags().StringVar(&opts.source, "source", corpus.AllSources, "source to match against, or \"all\"")
	cmd.Flags().BoolVar(&opts.many, "many", false, "return ranked candidates instead of the single best")
	cmd.Flags().IntVar(&opts.top, "top", 0, "maximum candidates with --many (default matcher.top_n)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "minimum confidence (default matcher.threshold or matcher.many_threshold)")
	return cmd
}

func runMatch(cmd *cobra.Command, root *rootOptions, opts *matchOptions, text string) error {
	a, err := newApp(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := a.requestContext(cmd.Context())

	repo, err := buildRepository(opts.corpora)
	if err != nil {
		return err
	}
	tasks, err := repo.Tasks(ctx, opts.source)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	a.logger.Debug(ctx, "loaded corpus",
		zap.String("source", opts.source),
		zap.Int("tasks", len(tasks)))

	mcfg := a.matcher.Config()
	threshold := mcfg.Threshold
	if opts.many {
		threshold = mcfg.ManyThreshold
	}
	if cmd.Flags().Changed("threshold") {
		if opts.threshold < 0 || opts.threshold > 1 {
			return fmt.Errorf("--threshold must be within [0, 1], got %v", opts.threshold)
		}
		threshold = opts.threshold
	}
	top := mcfg.TopN
	if cmd.Flags().Changed("top") {
		top = opts.top
	}

	out := a.match(ctx, text, tasks, opts.many, top, threshold)
	return outputJSON(cmd.OutOrStdout(), out)
}

// match runs extraction, matching and disambiguation for one statement.
func (a *app) match(ctx context.Context, text string, tasks []corpus.Task, many bool, top int, threshold float64) matchOutput {
	out := matchOutput{
		Input:   text,
		Signal:  a.extractor.Extract(ctx, text),
		Matches: []matcher.MatchResult{},
	}

	if many {
		out.Matches = a.matcher.MatchMany(ctx, text, tasks, top, threshold)
	} else if best := a.matcher.MatchOne(ctx, text, tasks, threshold); best != nil {
		out.Matches = []matcher.MatchResult{*best}
	}

	out.Decision = disambiguate.Decide(out.Matches, text, a.decide)
	a.logger.Info(ctx, "matched statement",
		zap.Int("candidates", len(out.Matches)),
		zap.String("decision", string(out.Decision.Kind)))
	return out
}

// buildRepository registers one file source per --corpus value, or the
// sample tasks when none is given.
func buildRepository(corpora []string) (*corpus.Repository, error) {
	repo := corpus.NewRepository()
	if len(corpora) == 0 {
		repo.Register(corpus.NewStaticSource("sample", corpus.Sample()))
		return repo, nil
	}

	for _, value := range corpora {
		name, path, err := parseCorpusFlag(value)
		if err != nil {
			return nil, err
		}
		repo.Register(corpus.NewFileSource(name, path))
	}
	return repo, nil
}

// parseCorpusFlag splits name=path; a bare path is named after its file.
func parseCorpusFlag(value string) (name, path string, err error) {
	if n, p, ok := strings.Cut(value, "="); ok {
		name, path = strings.TrimSpace(n), strings.TrimSpace(p)
	} else {
		path = strings.TrimSpace(value)
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if name == "" || path == "" {
		return "", "", fmt.Errorf("invalid --corpus %q (want path or name=path)", value)
	}
	if name == corpus.AllSources {
		return "", "", fmt.Errorf("invalid --corpus %q: %q is reserved", value, corpus.AllSources)
	}
	return name, path, nil
}
