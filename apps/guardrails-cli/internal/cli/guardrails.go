package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/SecureAI-Team/aiguardrails/internal/config"
	sdk "github.com/SecureAI-Team/aiguardrails/packages/sdk-go"
)

var (
	baseURLFlag   string
	appIDFlag     string
	appSecretFlag string
	planTools     []string
)

var promptCheckCmd = &cobra.Command{
	Use:   "prompt-check <prompt>",
	Short: "Run a prompt through the prompt firewall",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGuardrailsCall(cmd, promptCheckCall(args[0]))
	},
}

var outputFilterCmd = &cobra.Command{
	Use:   "output-filter <output>",
	Short: "Run model output through the output filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGuardrailsCall(cmd, outputFilterCall(args[0]))
	},
}

var agentPlanCmd = &cobra.Command{
	Use:   "agent-plan <prompt>",
	Short: "Request an agent plan for a prompt",
	Long: `Request an agent plan for a prompt. Each --tool is sent as one tool
descriptor; values that parse as JSON are sent as JSON, anything else as a string.

  aiguardrails agent-plan "summarise the report" --tool search --tool '{"name":"sql"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGuardrailsCall(cmd, agentPlanCall(args[0], parseToolDescriptors(planTools)))
	},
}

func init() {
	for _, cmd := range []*cobra.Command{promptCheckCmd, outputFilterCmd, agentPlanCmd} {
		cmd.Flags().StringVar(&baseURLFlag, "base-url", "", "Guardrails service base URL (overrides "+config.EnvBaseURL+")")
		cmd.Flags().StringVar(&appIDFlag, "app-id", "", "Application id (overrides "+config.EnvAppID+")")
		cmd.Flags().StringVar(&appSecretFlag, "app-secret", "", "Application secret (overrides "+config.EnvAppSecret+")")
		rootCmd.AddCommand(cmd)
	}
	agentPlanCmd.Flags().StringArrayVar(&planTools, "tool", nil, "Tool descriptor (repeatable)")
}

type guardrailsCall func(context.Context, *sdk.Client) (any, error)

func promptCheckCall(prompt string) guardrailsCall {
	return func(ctx context.Context, c *sdk.Client) (any, error) {
		return c.PromptCheck(ctx, prompt)
	}
}

func outputFilterCall(output string) guardrailsCall {
	return func(ctx context.Context, c *sdk.Client) (any, error) {
		return c.OutputFilter(ctx, output)
	}
}

func agentPlanCall(prompt string, tools []any) guardrailsCall {
	return func(ctx context.Context, c *sdk.Client) (any, error) {
		return c.AgentPlan(ctx, prompt, tools...)
	}
}

func runGuardrailsCall(cmd *cobra.Command, call guardrailsCall) error {
	cmd.SilenceUsage = true

	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := call(ctx, client)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

// newClient resolves settings with flags over environment over profile.
func newClient(cmd *cobra.Command) (*sdk.Client, error) {
	path := cfgFile
	optional := false
	if path == "" {
		path = config.DefaultProfilePath()
		optional = true
	}
	profile, err := config.LoadProfile(path, optional)
	if err != nil {
		return nil, err
	}
	settings, err := config.Resolve(profile, sdk.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		settings.BaseURL = baseURLFlag
	}
	if flags.Changed("app-id") {
		settings.AppID = appIDFlag
	}
	if flags.Changed("app-secret") {
		settings.Secret = appSecretFlag
	}
	if flags.Changed("timeout") {
		settings.Timeout = timeout
	}

	transport, err := sdk.NewTransport(sdk.TransportConfig{
		ClientCertFile: settings.TLSCertFile,
		ClientKeyFile:  settings.TLSKeyFile,
		CAFile:         settings.TLSCAFile,
		ServerName:     settings.TLSServerName,
	})
	if err != nil {
		return nil, err
	}

	return sdk.NewClientFromConfig(sdk.Config{
		BaseURL: settings.BaseURL,
		AppID:   settings.AppID,
		Secret:  settings.Secret,
		Timeout: settings.Timeout,
	},
		sdk.WithTransport(transport),
		sdk.WithLogger(newLogger(cmd.ErrOrStderr())),
		sdk.WithUserAgent(userAgent()),
	)
}

func parseToolDescriptors(raw []string) []any {
	tools := make([]any, 0, len(raw))
	for _, value := range raw {
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			tools = append(tools, decoded)
			continue
		}
		tools = append(tools, value)
	}
	return tools
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
