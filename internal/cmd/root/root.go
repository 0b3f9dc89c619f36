// Package root provides the root command for the wtx CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/internal/cmd/clean"
	"github.com/open-cli-collective/wtx/internal/cmd/completion"
	"github.com/open-cli-collective/wtx/internal/cmd/configcmd"
	"github.com/open-cli-collective/wtx/internal/cmd/dumpcmd"
	"github.com/open-cli-collective/wtx/internal/cmd/expand"
	"github.com/open-cli-collective/wtx/internal/cmd/fetch"
	initcmd "github.com/open-cli-collective/wtx/internal/cmd/init"
	"github.com/open-cli-collective/wtx/internal/cmd/parse"
	"github.com/open-cli-collective/wtx/internal/cmd/search"
	"github.com/open-cli-collective/wtx/internal/version"
	"github.com/open-cli-collective/wtx/internal/view"
)

// NewCmdRoot creates the root command for wtx.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wtx",
		Short: "Turn MediaWiki wikitext into clean text",
		Long: `wtx cleans MediaWiki wikitext into plain text, markdown or HTML.

It expands common templates and parser functions, strips markup, keeps
placeholders for content it removes, and works on local files, pages
fetched from a wiki, or whole XML dumps.

Get started by running: wtx init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/wtx/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format for listings: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	_ = cmd.RegisterFlagCompletionFunc("output", completion.Values(view.ValidFormats()...))

	cmd.SetVersionTemplate("wtx version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(clean.NewCmdClean())
	cmd.AddCommand(parse.NewCmdParse())
	cmd.AddCommand(expand.NewCmdExpand())
	cmd.AddCommand(fetch.NewCmdFetch())
	cmd.AddCommand(search.NewCmdSearch())
	cmd.AddCommand(dumpcmd.NewCmdDump())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
