// Package cmdutil holds the pieces shared by the page commands: engine
// flags, config loading, input reading and page output.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/api"
	"github.com/open-cli-collective/wtx/internal/cmd/completion"
	"github.com/open-cli-collective/wtx/internal/config"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

// EngineFlags are the engine settings accepted by every command that
// cleans wikitext. Flags the user sets win over the config file.
type EngineFlags struct {
	Markers          string
	NoTemplates      bool
	ExtractCitations bool
	PreserveUnknown  bool
	DumpDate         string
}

// Register adds the engine flags to cmd.
func (f *EngineFlags) Register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.Markers, "markers", "", "Markers to keep: all, none, or a list of "+strings.Join(wikitext.MarkerNames(), ","))
	fs.BoolVar(&f.NoTemplates, "no-templates", false, "Drop templates instead of expanding them")
	fs.BoolVar(&f.ExtractCitations, "citations", false, "Render citation templates as text")
	fs.BoolVar(&f.PreserveUnknown, "keep-unknown", false, "Keep unknown templates verbatim")
	fs.StringVar(&f.DumpDate, "date", "", "Reference date for ages and date magic words (YYYY-MM-DD, default today)")

	markers := append([]string{"all", "none"}, wikitext.MarkerNames()...)
	_ = cmd.RegisterFlagCompletionFunc("markers", completion.ListValues(markers...))
}

// RegisterFormat adds the -f/--format flag with value completion.
func RegisterFormat(cmd *cobra.Command, target *string, def, usage string) {
	cmd.Flags().StringVarP(target, "format", "f", def, usage+": "+strings.Join(config.FormatNames(), ", "))
	_ = cmd.RegisterFlagCompletionFunc("format", completion.Values(config.FormatNames()...))
}

// Apply copies the flags set on cmd into cfg.
func (f *EngineFlags) Apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("markers") {
		cfg.Markers = f.Markers
	}
	if fs.Changed("no-templates") {
		cfg.NoTemplates = f.NoTemplates
	}
	if fs.Changed("citations") {
		cfg.ExtractCitations = f.ExtractCitations
	}
	if fs.Changed("keep-unknown") {
		cfg.PreserveUnknownTemplates = f.PreserveUnknown
	}
	if fs.Changed("date") {
		cfg.DumpDate = f.DumpDate
	}
}

// Options loads the config, applies the flags and returns engine options.
func (f *EngineFlags) Options(cmd *cobra.Command) (*config.Config, wikitext.Options, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, wikitext.Options{}, err
	}
	f.Apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, wikitext.Options{}, fmt.Errorf("invalid config: %w", err)
	}
	opts, err := cfg.ToOptions()
	if err != nil {
		return nil, wikitext.Options{}, err
	}
	return cfg, opts, nil
}

// LoadConfig loads the file named by --config, or the default file, with
// environment overrides.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(ConfigPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// ConfigPath returns the --config flag value, or the default path when the
// flag is unset.
func ConfigPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return config.DefaultConfigPath()
}

// ReadInput reads the file named by args[0], or stdin when there is no
// argument or it is "-".
func ReadInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// ResolveFormat picks the flag value when set, then the configured
// format, then def.
func ResolveFormat(cmd *cobra.Command, flagValue, configured, def string) (string, error) {
	format := def
	switch {
	case cmd.Flags().Changed("format"):
		format = flagValue
	case configured != "":
		format = configured
	}
	if !config.ValidFormat(format) {
		return "", fmt.Errorf("invalid format %q (valid: %s)", format, strings.Join(config.FormatNames(), ", "))
	}
	return format, nil
}

// NewClient creates an API client for the configured wiki.
func NewClient(cfg *config.Config) (*api.Client, error) {
	cfg.NormalizeURL()
	if err := cfg.RequireAPI(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	client := api.NewClient(cfg.APIURL, cfg.UserAgent)
	if cfg.Username != "" {
		client.WithBasicAuth(cfg.Username, cfg.Password)
	}
	return client, nil
}
