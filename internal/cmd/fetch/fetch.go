// Package fetch provides the fetch command for reading pages from a live
// wiki.
package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/api"
	"github.com/open-cli-collective/wtx/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wtx/internal/view"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

type fetchOptions struct {
	format  string
	raw     bool
	engine  wikitext.Options
	noColor bool
}

// fetchedPage is the JSON form of a fetched page.
type fetchedPage struct {
	PageID     int64     `json:"page_id"`
	RevisionID int64     `json:"revision_id"`
	Timestamp  time.Time `json:"timestamp"`
	*cmdutil.Page
}

// NewCmdFetch creates the fetch command.
func NewCmdFetch() *cobra.Command {
	opts := &fetchOptions{}
	flags := &cmdutil.EngineFlags{}

	cmd := &cobra.Command{
		Use:   "fetch <title>",
		Short: "Fetch a page from the configured wiki and clean it",
		Long: `Fetch the latest revision of a page through the MediaWiki Action API and
convert it like 'wtx clean'. Redirects are followed.`,
		Example: `  # Clean text of a page
  wtx fetch "Eiffel Tower"

  # Markdown
  wtx fetch "Eiffel Tower" --format markdown

  # Raw wikitext
  wtx fetch "Eiffel Tower" --raw`,
		Args: cobra.ExactArgs(1),
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

			client, err := cmdutil.NewClient(cfg)
			if err != nil {
				return fmt.Errorf("%w (run 'wtx init' to configure)", err)
			}
			return runFetch(cmd.Context(), args[0], opts, client, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags.Register(cmd)
	cmdutil.RegisterFormat(cmd, &opts.format, "clean", "Output format")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the page's wikitext unchanged")

	return cmd
}

func runFetch(ctx context.Context, title string, opts *fetchOptions, client *api.Client, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	page, err := client.GetPage(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to get page: %w", err)
	}

	renderer := view.NewRenderer(view.FormatPlain, opts.noColor)
	renderer.SetWriter(out)
	renderer.SetErrWriter(errOut)

	if page.RedirectedFrom != "" {
		renderer.Warning(fmt.Sprintf("%s → %s", page.RedirectedFrom, page.Title))
	}
	if page.ContentModel != "" && page.ContentModel != "wikitext" {
		return fmt.Errorf("page %q has content model %q, not wikitext", page.Title, page.ContentModel)
	}

	if opts.raw {
		renderer.RenderText(page.Content)
		return nil
	}

	engineOpts := opts.engine
	engineOpts.Title = page.Title
	engineOpts.Namespace = wikitext.NamespaceName(page.Namespace)
	e := wikitext.New(engineOpts)

	if opts.format == "json" {
		return renderer.RenderJSON(fetchedPage{
			PageID:     page.ID,
			RevisionID: page.RevisionID,
			Timestamp:  page.Timestamp,
			Page:       cmdutil.BuildPage(e, page.Content, false),
		})
	}
	return cmdutil.WritePage(out, e, page.Content, opts.format, opts.noColor)
}
