package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wtx/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current wtx configuration with value source indicators.`,
		Example: `  # Show current config
  wtx config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(cmd.OutOrStdout(), cmdutil.ConfigPath(cmd), noColor)
		},
	}

	return cmd
}

func runShow(out io.Writer, configPath string, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue string, envVars ...string) {
		_, _ = bold.Fprintf(out, "%-18s", label+":")
		if value == "" {
			_, _ = dim.Fprintln(out, "-")
			return
		}

		display := value
		if strings.Contains(strings.ToLower(label), "password") {
			display = mask(value)
		}
		fmt.Fprint(out, display)

		source := "config"
		if fileErr != nil {
			source = "-"
		}
		for _, envVar := range envVars {
			if v := os.Getenv(envVar); v != "" && v == value {
				source = envVar
				break
			}
		}
		if fileValue != value && source == "config" {
			source = "-"
		}

		_, _ = dim.Fprintf(out, "  (source: %s)\n", source)
	}

	printField("API URL", cfg.APIURL, fileCfg.APIURL, "WTX_API_URL", "MEDIAWIKI_API_URL")
	printField("User-Agent", cfg.UserAgent, fileCfg.UserAgent, "WTX_USER_AGENT", "MEDIAWIKI_USER_AGENT")
	printField("Username", cfg.Username, fileCfg.Username, "WTX_USERNAME")
	printField("Password", cfg.Password, fileCfg.Password, "WTX_PASSWORD")
	printField("Markers", cfg.Markers, fileCfg.Markers, "WTX_MARKERS")
	printField("Dump date", cfg.DumpDate, fileCfg.DumpDate, "WTX_DUMP_DATE")
	printField("Workers", intField(cfg.Workers), intField(fileCfg.Workers), "WTX_WORKERS")
	printField("Output format", cfg.OutputFormat, fileCfg.OutputFormat)
	printField("Templates", boolField(!cfg.NoTemplates, "expanded", "kept"), boolField(!fileCfg.NoTemplates, "expanded", "kept"))
	printField("Citations", boolField(cfg.ExtractCitations, "extracted", ""), boolField(fileCfg.ExtractCitations, "extracted", ""))

	fmt.Fprintln(out)
	_, _ = dim.Fprintf(out, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(out, "(file not found)")
	}

	return nil
}

// mask hides all but the ends of a secret; short secrets are hidden whole.
func mask(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func intField(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func boolField(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
