package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies wtx to wikis that require a descriptive
	// User-Agent.
	DefaultUserAgent = "wtx (https://github.com/open-cli-collective/wtx)"
)

// Client is a MediaWiki Action API client.
type Client struct {
	apiURL     string
	userAgent  string
	username   string
	password   string
	httpClient *http.Client
}

// NewClient creates a client for the api.php endpoint at apiURL. An empty
// userAgent means DefaultUserAgent.
func NewClient(apiURL, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		apiURL:    strings.TrimSuffix(apiURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// WithBasicAuth sets credentials for wikis behind HTTP basic auth.
func (c *Client) WithBasicAuth(username, password string) *Client {
	c.username = username
	c.password = password
	return c
}

// apiEnvelope holds the parts every Action API response may carry.
type apiEnvelope struct {
	Error    *ErrorResponse             `json:"error"`
	Warnings map[string]json.RawMessage `json:"warnings"`
}

// do executes a GET request with params and returns the response body.
func (c *Client) do(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &ErrorResponse{
			StatusCode: resp.StatusCode,
			Code:       "http",
			Info:       strings.TrimSpace(string(respBody)),
		}
	}

	var env apiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if env.Error != nil {
		env.Error.StatusCode = resp.StatusCode
		return nil, env.Error
	}
	for module, w := range env.Warnings {
		log.Printf("WARN: API warning from %s: %s", module, w)
	}

	return respBody, nil
}
