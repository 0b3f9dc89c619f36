// Package clean provides the clean command.
package clean

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

type cleanOptions struct {
	title     string
	namespace string
	format    string
	engine    wikitext.Options
	noColor   bool
}

// NewCmdClean creates the clean command.
func NewCmdClean() *cobra.Command {
	opts := &cleanOptions{}
	flags := &cmdutil.EngineFlags{}

	cmd := &cobra.Command{
		Use:   "clean [file]",
		Short: "Convert wikitext to clean text",
		Long: `Convert a page of wikitext to clean text.

Templates, magic words and parser functions are expanded, markup is removed,
and regions such as math, code and tables are kept as markers unless
--markers says otherwise. Reads stdin when no file is given.`,
		Example: `  # Clean a saved page
  wtx clean Paris.wiki --title Paris

  # Markdown, keeping only math and code markers
  wtx clean Paris.wiki --format markdown --markers math,code

  # From stdin, classified elements as JSON
  cat Paris.wiki | wtx clean --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engineOpts, err := flags.Options(cmd)
			if err != nil {
				return err
			}
			opts.engine = engineOpts
			opts.format, err = cmdutil.ResolveFormat(cmd, opts.format, cfg.OutputFormat, "clean")
			if err != nil {
				return err
			}
			opts.noColor, _ = cmd.Flags().GetBool("no-color")

			text, err := cmdutil.ReadInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runClean(opts, text, cmd.OutOrStdout())
		},
	}

	flags.Register(cmd)
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Page title, enables {{PAGENAME}} and friends")
	cmd.Flags().StringVar(&opts.namespace, "namespace", "", "Namespace of the page title")
	cmdutil.RegisterFormat(cmd, &opts.format, "clean", "Output format")

	return cmd
}

func runClean(opts *cleanOptions, text string, out io.Writer) error {
	engineOpts := opts.engine
	engineOpts.Title = opts.title
	engineOpts.Namespace = opts.namespace
	return cmdutil.WritePage(out, wikitext.New(engineOpts), text, opts.format, opts.noColor)
}
