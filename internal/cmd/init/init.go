// Package init provides the init command for wtx.
package init

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/api"
	"github.com/open-cli-collective/wtx/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wtx/internal/config"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		url       string
		userAgent string
		noVerify  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize wtx configuration",
		Long: `Initialize wtx with the wiki it talks to and the default cleaning options.

This command will guide you through setting the MediaWiki API endpoint, the
User-Agent sent with every request, optional bot credentials and which
placeholder markers cleaned text keeps. The configuration will be saved to
~/.config/wtx/config.yml.

Wikimedia sites reject requests without a descriptive User-Agent. Include a
way to contact you, e.g. "my-research-bot/1.0 (me@example.com)".`,
		Example: `  # Interactive setup
  wtx init

  # Pre-populate the wiki
  wtx init --url https://en.wikipedia.org`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), url, userAgent, noVerify)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Wiki URL or api.php endpoint (e.g., https://en.wikipedia.org)")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent header sent to the wiki")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip connection verification")

	return cmd
}

func runInit(out io.Writer, prefillURL, prefillUserAgent string, noVerify bool) error {
	configPath := config.DefaultConfigPath()

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{
		APIURL:    prefillURL,
		UserAgent: prefillUserAgent,
	}

	markers := wikitext.MarkerNames()
	workers := ""

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Wiki URL").
				Description("The wiki's address or its api.php endpoint").
				Placeholder("https://en.wikipedia.org").
				Value(&cfg.APIURL).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("URL is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("User-Agent").
				Description("Identify yourself to the wiki operators").
				Placeholder(api.DefaultUserAgent).
				Value(&cfg.UserAgent),

			huh.NewInput().
				Title("Username (optional)").
				Description("Bot account for private wikis").
				Value(&cfg.Username),

			huh.NewInput().
				Title("Password (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Password),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Markers").
				Description("Placeholders kept in cleaned text for removed content").
				Options(huh.NewOptions(wikitext.MarkerNames()...)...).
				Value(&markers),

			huh.NewConfirm().
				Title("Extract citations").
				Description("Render citation templates as reference text instead of dropping them").
				Value(&cfg.ExtractCitations),

			huh.NewInput().
				Title("Dump workers (optional)").
				Description("Parallel workers for 'wtx dump', blank for one per CPU").
				Value(&workers).
				Validate(validateWorkers),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Markers = markerSetting(markers)
	if workers != "" {
		cfg.Workers, _ = strconv.Atoi(workers)
	}
	cfg.NormalizeURL()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Verify connection unless skipped
	if !noVerify {
		fmt.Fprint(out, "Verifying connection... ")
		info, err := cmdutil.VerifyConnection(context.Background(), cfg)
		if err != nil {
			fmt.Fprintln(out, "failed!")
			return fmt.Errorf("connection verification failed: %w", err)
		}
		fmt.Fprintf(out, "connected to %s (%s)\n", info.SiteName, info.Generator)
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfiguration saved to %s\n", configPath)
	fmt.Fprintln(out, "\nYou're all set! Try running:")
	fmt.Fprintln(out, "  wtx search \"eiffel tower\"")
	fmt.Fprintln(out, "  wtx fetch \"Eiffel Tower\" --format markdown")

	return nil
}

func validateWorkers(s string) error {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("workers must be a non-negative number")
	}
	return nil
}

// markerSetting turns the selected marker names into the config value:
// empty keeps the default of every marker, "none" disables them all.
func markerSetting(selected []string) string {
	switch len(selected) {
	case 0:
		return "none"
	case len(wikitext.MarkerNames()):
		return ""
	}
	return strings.Join(selected, ",")
}
