// Package dumpcmd provides the dump command for batch conversion of XML
// dumps.
package dumpcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wtx/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wtx/internal/dump"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

type dumpOptions struct {
	format     string
	outPath    string
	workers    int
	limit      int64
	report     int64
	namespaces []int
	redirects  bool
	engine     wikitext.Options
}

// record is one output line.
type record struct {
	ID        uint64 `json:"id"`
	Namespace int    `json:"ns"`
	Revision  uint64 `json:"revision"`
	Timestamp string `json:"timestamp,omitempty"`
	*cmdutil.Page
}

// NewCmdDump creates the dump command.
func NewCmdDump() *cobra.Command {
	opts := &dumpOptions{}
	flags := &cmdutil.EngineFlags{}

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Convert every page of an XML dump",
		Long: `Convert the pages of a MediaWiki XML dump and write one JSON record per
page. Files ending in .bz2 are decompressed on the fly. Pages are handled
by a pool of workers, so records come out in completion order.

Progress is logged to stderr.`,
		Example: `  # Clean every article, 8 workers
  wtx dump enwiki-latest-pages-articles.xml.bz2 --workers 8 --namespace 0 > pages.jsonl

  # First 1000 pages as markdown into a file
  wtx dump dump.xml --limit 1000 --format markdown --out sample.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engineOpts, err := flags.Options(cmd)
			if err != nil {
				return err
			}
			opts.engine = engineOpts
			if !cmd.Flags().Changed("workers") && cfg.Workers > 0 {
				opts.workers = cfg.Workers
			}
			if opts.format, err = cmdutil.ResolveFormat(cmd, opts.format, "", "clean"); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.outPath != "" && opts.outPath != "-" {
				f, err := os.Create(opts.outPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			stats, err := runDump(cmd.Context(), args[0], opts, out)
			if err != nil {
				return err
			}
			log.Printf("Done: %s", stats)
			return nil
		},
	}

	flags.Register(cmd)
	cmdutil.RegisterFormat(cmd, &opts.format, "clean", "Text format")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Write records to this file instead of stdout")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	cmd.Flags().Int64VarP(&opts.limit, "limit", "l", 0, "Stop after this many pages (0 for all)")
	cmd.Flags().Int64Var(&opts.report, "report", 10000, "Log progress every this many pages (0 to disable)")
	cmd.Flags().IntSliceVarP(&opts.namespaces, "namespace", "n", nil, "Only pages in these namespaces")
	cmd.Flags().BoolVar(&opts.redirects, "redirects", false, "Include redirect pages")

	return cmd
}

func runDump(ctx context.Context, path string, opts *dumpOptions, out io.Writer) (dump.Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := dump.Open(path)
	if err != nil {
		return dump.Stats{}, err
	}
	defer f.Close()

	if f.SiteInfo.SiteName != "" {
		log.Printf("Reading %s dump (%s)", f.SiteInfo.SiteName, f.SiteInfo.Generator)
	}

	w := bufio.NewWriter(out)
	stats, err := dump.Process(ctx, f, w, dump.ProcessOptions{
		Workers:     opts.workers,
		ReportEvery: opts.report,
		Limit:       opts.limit,
		Namespaces:  opts.namespaces,
	}, newHandler(opts, f.SiteInfo))
	if flushErr := w.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("failed to write output: %w", flushErr)
	}
	return stats, err
}

// newHandler returns the per-page conversion. Pages that are not wikitext
// are dropped, as are redirects unless opts.redirects is set.
func newHandler(opts *dumpOptions, si dump.SiteInfo) dump.Handler {
	return func(page *dump.Page) (any, error) {
		rev := page.Latest()
		if rev.Model != "" && rev.Model != "wikitext" {
			return nil, nil
		}
		if page.Redirect.Title != "" && !opts.redirects {
			return nil, nil
		}

		engineOpts := opts.engine
		engineOpts.Title = page.Title
		engineOpts.Namespace = si.NamespaceName(page.Namespace)
		e := wikitext.New(engineOpts)

		p := cmdutil.BuildPage(e, rev.Text, opts.format == "json")
		if page.Redirect.Title != "" {
			p.Redirect = page.Redirect.Title
		}
		if opts.format != "clean" && opts.format != "json" && !p.IsRedirect() {
			text, _, err := cmdutil.Convert(e, rev.Text, opts.format)
			if err != nil {
				return nil, err
			}
			p.Text = text
		}

		return &record{
			ID:        page.ID,
			Namespace: page.Namespace,
			Revision:  rev.ID,
			Timestamp: rev.Timestamp,
			Page:      p,
		}, nil
	}
}
