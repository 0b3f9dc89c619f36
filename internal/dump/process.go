package dump

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// PageSource emits pages until io.EOF. *Parser is a PageSource.
type PageSource interface {
	Next() (*Page, error)
}

// Handler turns one page into a record to be written as a JSON line. A nil
// record drops the page, which then counts as skipped.
type Handler func(page *Page) (any, error)

// ProcessOptions configures Process.
type ProcessOptions struct {
	Workers     int
	ReportEvery int64 // pages between progress lines, 0 for none
	Limit       int64 // stop after this many pages, 0 for all
	Namespaces  []int // only pages in these namespaces, empty for all
}

// Stats summarizes one Process run. Every page read lands in exactly one
// counter: Pages were written, Skipped were filtered out by namespace or
// dropped by the handler, and Failed had a handler error.
type Stats struct {
	Pages   int64
	Skipped int64
	Failed  int64
	Elapsed time.Duration
}

// Rate returns the pages written per second.
func (s Stats) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Pages) / s.Elapsed.Seconds()
}

func (s Stats) String() string {
	return fmt.Sprintf("%s pages (%s skipped, %s failed) in %v (%.2f p/s)",
		humanize.Comma(s.Pages), humanize.Comma(s.Skipped), humanize.Comma(s.Failed),
		s.Elapsed.Round(time.Millisecond), s.Rate())
}

// Process hands the pages of src to handle on opts.Workers goroutines and
// writes every record to w as one JSON line. Records are written in
// completion order. A page whose handler fails is logged and counted, and
// processing goes on.
func Process(ctx context.Context, src PageSource, w io.Writer, opts ProcessOptions, handle Handler) (Stats, error) {
	workers := max(opts.Workers, 1)
	ch := make(chan *Page, workers*4)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		writeErr error
		failed   atomic.Int64
		dropped  atomic.Int64
	)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range ch {
				rec, err := handle(page)
				if err != nil {
					failed.Add(1)
					log.Printf("WARN: failed to process page %s: %v", page.PageRef(), err)
					continue
				}
				if rec == nil {
					dropped.Add(1)
					continue
				}
				mu.Lock()
				if writeErr == nil {
					writeErr = enc.Encode(rec)
				}
				mu.Unlock()
			}
		}()
	}

	var stats Stats
	var readErr error
	var dispatched int64
	wanted := namespaceSet(opts.Namespaces)
	start := time.Now()
	prev := start

loop:
	for opts.Limit == 0 || dispatched < opts.Limit {
		page, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("failed to read page: %w", err)
			break
		}
		if wanted != nil && !wanted[page.Namespace] {
			stats.Skipped++
			continue
		}

		select {
		case ch <- page:
		case <-ctx.Done():
			readErr = ctx.Err()
			break loop
		}

		dispatched++
		if opts.ReportEvery > 0 && dispatched%opts.ReportEvery == 0 {
			now := time.Now()
			log.Printf("Processed %s pages total (%.2f/s)",
				humanize.Comma(dispatched), float64(opts.ReportEvery)/now.Sub(prev).Seconds())
			prev = now
		}
	}

	close(ch)
	wg.Wait()
	stats.Failed = failed.Load()
	stats.Skipped += dropped.Load()
	stats.Pages = dispatched - stats.Failed - dropped.Load()
	stats.Elapsed = time.Since(start)

	if readErr != nil {
		return stats, readErr
	}
	if writeErr != nil {
		return stats, fmt.Errorf("failed to write record: %w", writeErr)
	}
	return stats, nil
}

func namespaceSet(keys []int) map[int]bool {
	if len(keys) == 0 {
		return nil
	}
	set := make(map[int]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
