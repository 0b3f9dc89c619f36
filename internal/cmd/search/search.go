// Package search provides the search command for finding wiki pages.
package search

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/api"
	"github.com/open-cli-collective/wtx/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wtx/internal/view"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

type searchOptions struct {
	query      string
	namespaces []int
	limit      int
	offset     int

	output  string
	noColor bool
}

// NewCmdSearch creates the search command.
func NewCmdSearch() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the configured wiki",
		Long: `Full-text search of the configured wiki through the MediaWiki Action API.

The query uses the wiki's own search syntax, so keywords such as intitle:
and incategory: work where the wiki supports them.`,
		Example: `  # Full-text search of articles
  wtx search "eiffel tower"

  # Search categories and articles
  wtx search "capitals of europe" --namespace 0 --namespace 14

  # Next page of results
  wtx search "eiffel" --offset 20

  # Output as JSON for scripting
  wtx search "eiffel" -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.query = args[0]
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")

			if err := validate(opts); err != nil {
				return err
			}
			cfg, err := cmdutil.LoadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := cmdutil.NewClient(cfg)
			if err != nil {
				return fmt.Errorf("%w (run 'wtx init' to configure)", err)
			}
			return runSearch(cmd.Context(), opts, client, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntSliceVarP(&opts.namespaces, "namespace", "n", nil, "Namespace numbers to search (default: articles)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 20, "Maximum number of results")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Skip this many results")

	return cmd
}

func validate(opts *searchOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if strings.TrimSpace(opts.query) == "" {
		return fmt.Errorf("search requires a query")
	}
	if opts.limit < 0 {
		return fmt.Errorf("invalid limit: %d (must be >= 0)", opts.limit)
	}
	if opts.offset < 0 {
		return fmt.Errorf("invalid offset: %d (must be >= 0)", opts.offset)
	}
	return nil
}

func runSearch(ctx context.Context, opts *searchOptions, client *api.Client, out, errOut io.Writer) error {
	if err := validate(opts); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(out)
	renderer.SetErrWriter(errOut)

	// Handle limit 0 - return empty
	if opts.limit == 0 {
		if opts.output == "json" {
			return renderer.RenderJSON([]interface{}{})
		}
		renderer.RenderText("No results.")
		return nil
	}

	result, err := client.Search(ctx, api.SearchOptions{
		Query:      opts.query,
		Namespaces: opts.namespaces,
		Limit:      opts.limit,
		Offset:     opts.offset,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for i := range result.Results {
		result.Results[i].Snippet = cleanSnippet(result.Results[i].Snippet)
	}

	if opts.output == "json" {
		return renderer.RenderJSON(result.Results)
	}

	if len(result.Results) == 0 {
		renderer.RenderText("No results found.")
		return nil
	}

	headers := []string{"ID", "TITLE", "WORDS", "SNIPPET"}
	var rows [][]string
	for _, r := range result.Results {
		rows = append(rows, []string{
			strconv.FormatInt(r.PageID, 10),
			view.Truncate(r.Title, 40),
			humanize.Comma(int64(r.WordCount)),
			view.Truncate(r.Snippet, 60),
		})
	}
	renderer.RenderTable(headers, rows)

	if result.HasMore() {
		renderer.Warning(fmt.Sprintf("showing %d of %s results, use --offset %d for more",
			len(result.Results), humanize.Comma(int64(result.TotalHits)), result.NextOffset))
	}

	return nil
}

// cleanSnippet drops the highlight markup of a search snippet.
func cleanSnippet(s string) string {
	s = wikitext.DecodeEntities(wikitext.StripTags(s))
	return strings.Join(strings.Fields(s), " ")
}
