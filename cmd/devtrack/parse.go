package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newParseCmd(root *rootOptions) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Extract a structured signal from a work statement",
		Long: `Extract ticket id, action, status, durations, project and entities from a
work statement and print the result as JSON.

Examples:
  # Parse one statement
  devtrack parse "Fixed login bug for Project Alpha #123, spent 2 hours"

  # Parse one statement per line
  cat standup.txt | devtrack parse --stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				texts, err := readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
				return runParseBatch(cmd, root, texts)
			}
			if len(args) == 0 {
				return fmt.Errorf("text is required (or use --stdin)")
			}
			return runParse(cmd, root, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read one statement per line from stdin")
	return cmd
}

func runParse(cmd *cobra.Command, root *rootOptions, text string) error {
	a, err := newApp(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := a.requestContext(cmd.Context())
	signal := a.extractor.Extract(ctx, text)
	a.logger.Debug(ctx, "parsed statement", zap.Float64("confidence", signal.Confidence))
	return outputJSON(cmd.OutOrStdout(), signal)
}

func runParseBatch(cmd *cobra.Command, root *rootOptions, texts []string) error {
	a, err := newApp(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := a.requestContext(cmd.Context())
	signals := a.extractor.ExtractBatch(ctx, texts)
	a.logger.Debug(ctx, "parsed statements", zap.Int("count", len(signals)))
	return outputJSON(cmd.OutOrStdout(), signals)
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return lines, nil
}
