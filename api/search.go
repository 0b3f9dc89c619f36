package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// SearchOptions contains options for a full-text search.
type SearchOptions struct {
	Query      string
	Namespaces []int // default: main namespace only
	Limit      int   // default 10, max 500
	Offset     int
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Results    []SearchResult
	TotalHits  int
	NextOffset int // 0 when there are no more results
}

// HasMore returns true if there are more results available.
func (r *SearchResponse) HasMore() bool {
	return r.NextOffset > 0
}

// Search runs a full-text search.
func (c *Client) Search(ctx context.Context, opts SearchOptions) (*SearchResponse, error) {
	if opts.Query == "" {
		return nil, fmt.Errorf("search query is required")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", opts.Query)
	params.Set("srprop", "size|wordcount|timestamp|snippet")
	params.Set("srlimit", "10")
	if opts.Limit > 0 {
		params.Set("srlimit", strconv.Itoa(min(opts.Limit, 500)))
	}
	if opts.Offset > 0 {
		params.Set("sroffset", strconv.Itoa(opts.Offset))
	}
	if len(opts.Namespaces) > 0 {
		ns := ""
		for i, n := range opts.Namespaces {
			if i > 0 {
				ns += "|"
			}
			ns += strconv.Itoa(n)
		}
		params.Set("srnamespace", ns)
	}

	body, err := c.do(ctx, params)
	if err != nil {
		return nil, err
	}

	var result struct {
		Continue struct {
			SrOffset int `json:"sroffset"`
		} `json:"continue"`
		Query struct {
			SearchInfo struct {
				TotalHits int `json:"totalhits"`
			} `json:"searchinfo"`
			Search []SearchResult `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return &SearchResponse{
		Results:    result.Query.Search,
		TotalHits:  result.Query.SearchInfo.TotalHits,
		NextOffset: result.Continue.SrOffset,
	}, nil
}
