package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrPageNotFound is returned by GetPage for a title with no page.
var ErrPageNotFound = errors.New("page not found")

type titleMapping struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type revisionsResponse struct {
	Query struct {
		Normalized []titleMapping `json:"normalized"`
		Redirects  []titleMapping `json:"redirects"`
		Pages      []struct {
			PageID    int64  `json:"pageid"`
			Namespace int    `json:"ns"`
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Invalid   bool   `json:"invalid"`
			Revisions []struct {
				RevID     int64     `json:"revid"`
				Timestamp time.Time `json:"timestamp"`
				Slots     struct {
					Main struct {
						ContentModel string `json:"contentmodel"`
						Content      string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// GetPage returns the latest revision of title, following redirects.
func (c *Client) GetPage(ctx context.Context, title string) (*Page, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("rvprop", "ids|timestamp|content")
	params.Set("rvslots", "main")
	params.Set("redirects", "1")
	params.Set("titles", title)

	body, err := c.do(ctx, params)
	if err != nil {
		return nil, err
	}

	var result revisionsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}

	if len(result.Query.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, title)
	}
	p := result.Query.Pages[0]
	if p.Missing || p.Invalid || len(p.Revisions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, title)
	}

	rev := p.Revisions[0]
	page := &Page{
		ID:           p.PageID,
		Namespace:    p.Namespace,
		Title:        p.Title,
		RevisionID:   rev.RevID,
		Timestamp:    rev.Timestamp,
		ContentModel: rev.Slots.Main.ContentModel,
		Content:      rev.Slots.Main.Content,
	}
	if len(result.Query.Normalized) > 0 || len(result.Query.Redirects) > 0 {
		if page.Title != title {
			page.RedirectedFrom = title
		}
	}
	return page, nil
}

// GetSiteInfo returns general information about the wiki.
func (c *Client) GetSiteInfo(ctx context.Context) (*SiteInfo, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "siteinfo")
	params.Set("siprop", "general")

	body, err := c.do(ctx, params)
	if err != nil {
		return nil, err
	}

	var result struct {
		Query struct {
			General SiteInfo `json:"general"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse site info response: %w", err)
	}
	return &result.Query.General, nil
}
