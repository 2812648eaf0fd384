package cli

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	sdk "github.com/SecureAI-Team/aiguardrails/packages/sdk-go"
)

const authCheckPrompt = "test"

var errAuthCheckUsage = errors.New("usage: aiguardrails <url> <app_id> <app_secret>")

func authCheckArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 3 {
		return errAuthCheckUsage
	}
	return nil
}

// runAuthCheck posts a fixed prompt to the URL verbatim and reports the outcome.
// Request failures are printed, never returned, so the exit status stays 0.
func runAuthCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := sdk.Config{
		BaseURL: args[0],
		AppID:   args[1],
		Secret:  args[2],
		Timeout: timeout,
	}

	fmt.Fprintf(out, "Sending request to %s...\n", cfg.BaseURL)
	fmt.Fprintf(out, "Headers: %s\n", formatHeaders(sdk.AuthHeaders(cfg)))

	client, err := sdk.NewClientFromConfig(cfg,
		sdk.WithLogger(newLogger(cmd.ErrOrStderr())),
		sdk.WithUserAgent(userAgent()),
	)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return nil
	}

	resp, err := client.Exchange(cmd.Context(), "", map[string]any{"prompt": authCheckPrompt})
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return nil
	}

	fmt.Fprintf(out, "Status: %d\n", resp.StatusCode)
	fmt.Fprintf(out, "Body: %s\n", resp.Body)
	return nil
}

func formatHeaders(h http.Header) string {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%q: %q", key, h.Get(key)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
