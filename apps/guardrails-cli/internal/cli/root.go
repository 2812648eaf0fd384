// Package cli implements the aiguardrails command line tool.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	sdk "github.com/SecureAI-Team/aiguardrails/packages/sdk-go"
)

var (
	cfgFile string
	verbose bool
	timeout = sdk.DefaultTimeout
)

var rootCmd = &cobra.Command{
	Use:   "aiguardrails <url> <app_id> <app_secret>",
	Short: "aiguardrails - credential check and client for the guardrails API",
	Long: `aiguardrails sends a test prompt to a guardrails endpoint with the given
application credentials and prints what came back:

  aiguardrails https://guardrails.example.com/v1/guardrails/prompt-check appId appSecret

The subcommands call the guardrails API using a profile (--config), the
AIGUARDRAILS_* environment variables or flags.`,
	Args: authCheckArgs,
	RunE: runAuthCheck,
}

func init() {
	// Secrets may start with "-"; everything after the URL is positional.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to profile YAML (default: ~/.aiguardrails/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests at debug level")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", sdk.DefaultTimeout, "Request timeout")
}

// Execute runs the command selected by the process arguments.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
