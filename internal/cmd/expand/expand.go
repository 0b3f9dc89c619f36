// Package expand provides the expand command.
package expand

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wtx/internal/view"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

type expandOptions struct {
	title     string
	namespace string
	engine    wikitext.Options
	noColor   bool
}

// NewCmdExpand creates the expand command.
func NewCmdExpand() *cobra.Command {
	opts := &expandOptions{}
	flags := &cmdutil.EngineFlags{}

	cmd := &cobra.Command{
		Use:   "expand [wikitext...]",
		Short: "Expand templates, magic words and parser functions",
		Long: `Expand the templates, magic words and parser functions in a snippet of
wikitext and print the result without any other cleanup. Reads stdin when
no snippet is given.`,
		Example: `  # Evaluate an expression
  wtx expand '{{#expr: 2 * (3 + 4)}}'

  # Ages are computed against --date
  wtx expand '{{birth date and age|1990|5|15}}' --date 2024-06-15

  # Page context for magic words
  wtx expand '{{SUBPAGENAME}}' --title 'Help:Editing/Tables'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, engineOpts, err := flags.Options(cmd)
			if err != nil {
				return err
			}
			opts.engine = engineOpts
			opts.noColor, _ = cmd.Flags().GetBool("no-color")

			var text string
			if len(args) > 0 && args[0] != "-" {
				text = strings.Join(args, " ")
			} else if text, err = cmdutil.ReadInput(nil, cmd.InOrStdin()); err != nil {
				return err
			}
			return runExpand(opts, text, cmd.OutOrStdout())
		},
	}

	flags.Register(cmd)
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Page title for {{PAGENAME}} and friends")
	cmd.Flags().StringVar(&opts.namespace, "namespace", "", "Namespace of the page title")

	return cmd
}

func runExpand(opts *expandOptions, text string, out io.Writer) error {
	engineOpts := opts.engine
	engineOpts.Title = opts.title
	engineOpts.Namespace = opts.namespace
	engineOpts.ExpandTemplates = true

	renderer := view.NewRenderer(view.FormatPlain, opts.noColor)
	renderer.SetWriter(out)
	renderer.RenderText(wikitext.New(engineOpts).Expand(strings.TrimRight(text, "\n")))
	return nil
}
