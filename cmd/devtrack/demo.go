package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/devtrack/internal/corpus"
)

// demoInputs cover the exact, fuzzy and semantic tiers against corpus.Sample.
var demoInputs = []string{
	"Fixed the login bug PROJ-123",
	"working on authentication issues",
	"redesigning the profile settings",
}

func newDemoCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Match sample statements against the sample tasks",
		Long: `Run three sample statements through extraction, matching and disambiguation
against a built-in corpus of three tasks. The semantic tier takes part when an
embedding provider is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			tasks := corpus.Sample()
			threshold := a.matcher.Config().Threshold
			results := make([]matchOutput, 0, len(demoInputs))
			for _, text := range demoInputs {
				ctx := a.requestContext(cmd.Context())
				results = append(results, a.match(ctx, text, tasks, false, 0, threshold))
			}
			return outputJSON(cmd.OutOrStdout(), results)
		},
	}
}
