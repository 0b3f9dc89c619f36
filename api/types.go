package api

import (
	"fmt"
	"time"
)

// Page is the latest revision of a wiki page.
type Page struct {
	ID           int64     `json:"id"`
	Namespace    int       `json:"namespace"`
	Title        string    `json:"title"`
	RevisionID   int64     `json:"revision_id"`
	Timestamp    time.Time `json:"timestamp"`
	ContentModel string    `json:"content_model"`
	Content      string    `json:"-"`
	// RedirectedFrom is the requested title when the API followed a
	// redirect or normalized the title.
	RedirectedFrom string `json:"redirected_from,omitempty"`
}

// SearchResult is one hit of a full-text search.
type SearchResult struct {
	Namespace int       `json:"ns"`
	Title     string    `json:"title"`
	PageID    int64     `json:"pageid"`
	Size      int       `json:"size"`
	WordCount int       `json:"wordcount"`
	Snippet   string    `json:"snippet"`
	Timestamp time.Time `json:"timestamp"`
}

// SiteInfo describes the wiki behind the endpoint.
type SiteInfo struct {
	SiteName  string `json:"sitename"`
	MainPage  string `json:"mainpage"`
	Base      string `json:"base"`
	Generator string `json:"generator"`
	Lang      string `json:"lang"`
	Server    string `json:"server"`
}

// ErrorResponse is an error reported by the API or an HTTP failure.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Info       string `json:"info"`
}

func (e *ErrorResponse) Error() string {
	if e.Code == "http" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Info)
	}
	return fmt.Sprintf("API error %s: %s", e.Code, e.Info)
}
