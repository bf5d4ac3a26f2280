// Package main implements the devtrack CLI: parse free-form work statements
// into structured signals and match them against a task corpus.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version information
var version = "dev"

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "devtrack",
		Short: "Turn work statements into task updates",
		Long: `devtrack extracts ticket ids, actions, durations and projects from short
free-form work statements, then finds the task they most likely refer to.

Configuration is read from ~/.config/devtrack/config.yaml and DEVTRACK_*
environment variables. Logs go to stderr; results are printed as JSON.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/devtrack/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (trace, debug, info, warn, error)")

	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newMatchCmd(opts))
	root.AddCommand(newDemoCmd(opts))
	return root
}

func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
