package configcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wtx/internal/config"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity with the configured wiki",
		Long:  `Test that wtx can reach the configured MediaWiki API with the current settings.`,
		Example: `  # Test connection
  wtx config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			cfg, err := cmdutil.LoadConfig(cmd)
			if err != nil {
				return fmt.Errorf("%w (run 'wtx init' to configure)", err)
			}
			return runTest(cmd.Context(), cmd.OutOrStdout(), cfg, noColor)
		},
	}

	return cmd
}

func runTest(ctx context.Context, out io.Writer, cfg *config.Config, noColor bool) error {
	if noColor {
		color.NoColor = true
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg.NormalizeURL()
	if err := cfg.RequireAPI(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w (run 'wtx init' to configure)", err)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintf(out, "Testing connection to %s...\n", cfg.APIURL)

	info, err := cmdutil.VerifyConnection(ctx, cfg)
	if err != nil {
		_, _ = red.Fprintln(out, "✗ Connection failed:", err)
		fmt.Fprintln(out, "\nCheck your settings with: wtx config show")
		fmt.Fprintln(out, "Reconfigure with: wtx init")
		return fmt.Errorf("connection failed: %w", err)
	}

	_, _ = green.Fprintln(out, "✓ API reachable")
	if cfg.Username != "" {
		_, _ = green.Fprintln(out, "✓ Credentials accepted")
	}
	fmt.Fprintf(out, "\nSite:      %s\n", info.SiteName)
	fmt.Fprintf(out, "Generator: %s\n", info.Generator)
	if info.MainPage != "" {
		fmt.Fprintf(out, "Main page: %s\n", info.MainPage)
	}

	return nil
}
