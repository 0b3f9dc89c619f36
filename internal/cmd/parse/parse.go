// Package parse provides the parse command.
package parse

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wtx/internal/cmd/completion"
	"github.com/open-cli-collective/wtx/internal/view"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

type parseOptions struct {
	title   string
	kind    string
	cleaned bool
	width   int
	engine  wikitext.Options
	output  string
	noColor bool
}

// NewCmdParse creates the parse command.
func NewCmdParse() *cobra.Command {
	opts := &parseOptions{}
	flags := &cmdutil.EngineFlags{}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Classify a page into elements",
		Long: `Split a page of wikitext into classified elements: headings, paragraphs,
list items, tables, templates and so on. Reads stdin when no file is given.`,
		Example: `  # List the elements of a page
  wtx parse Paris.wiki

  # Only the headings, with cleaned text
  wtx parse Paris.wiki --kind heading --text

  # Full element list as JSON
  wtx parse Paris.wiki -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, engineOpts, err := flags.Options(cmd)
			if err != nil {
				return err
			}
			opts.engine = engineOpts
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")

			text, err := cmdutil.ReadInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runParse(opts, text, cmd.OutOrStdout())
		},
	}

	flags.Register(cmd)
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Page title")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "Only list elements of this kind")
	_ = cmd.RegisterFlagCompletionFunc("kind", completion.Values(wikitext.ElementKindNames()...))
	cmd.Flags().BoolVar(&opts.cleaned, "text", false, "Show cleaned text instead of source")
	cmd.Flags().IntVar(&opts.width, "width", 60, "Truncate the text column to this many characters")

	return cmd
}

func runParse(opts *parseOptions, text string, out io.Writer) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	var kind wikitext.ElementKind
	if opts.kind != "" {
		var ok bool
		if kind, ok = wikitext.ParseElementKind(opts.kind); !ok {
			return fmt.Errorf("unknown element kind %q", opts.kind)
		}
	}

	engineOpts := opts.engine
	engineOpts.Title = opts.title
	e := wikitext.New(engineOpts)
	art := e.Parse(text)
	if opts.kind != "" {
		art.Elements = art.ElementsOf(kind)
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(out)

	if opts.output == "json" {
		return renderer.RenderJSON(art)
	}

	if art.IsRedirect() {
		renderer.RenderKeyValue("Redirect", art.RedirectTarget)
	}

	headers := []string{"#", "KIND", "LEVEL", "TEXT"}
	var rows [][]string
	for i, el := range art.Elements {
		content := el.Content
		if opts.cleaned {
			content = e.ElementText(el)
		}
		level := ""
		if el.Level > 0 {
			level = strconv.Itoa(el.Level)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			el.Kind.String(),
			level,
			view.Truncate(firstLine(content), opts.width),
		})
	}
	renderer.RenderTable(headers, rows)

	if opts.output != "plain" {
		if len(art.Categories) > 0 {
			renderer.RenderKeyValue("Categories", strings.Join(art.Categories, ", "))
		}
		if len(art.Links) > 0 {
			renderer.RenderKeyValue("Links", strings.Join(art.Links, ", "))
		}
		if len(art.Files) > 0 {
			renderer.RenderKeyValue("Files", strings.Join(art.Files, ", "))
		}
	}
	return nil
}

// firstLine returns the first line of s, marking dropped lines.
func firstLine(s string) string {
	first, rest, found := strings.Cut(s, "\n")
	if found && strings.TrimSpace(rest) != "" {
		return first + " ↵"
	}
	return first
}
