package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/open-cli-collective/wtx/api"
	"github.com/open-cli-collective/wtx/internal/config"
)

const verifyTimeout = 10 * time.Second

// VerifyConnection asks the configured wiki for its site info and turns
// the common failures into actionable errors.
func VerifyConnection(ctx context.Context, cfg *config.Config) (*api.SiteInfo, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	info, err := client.GetSiteInfo(ctx)
	if err == nil {
		return info, nil
	}

	var apiErr *api.ErrorResponse
	if !errors.As(err, &apiErr) || apiErr.Code != "http" {
		return nil, err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("authentication failed - check your username and password")
	case http.StatusForbidden:
		return nil, fmt.Errorf("access denied - check your permissions and User-Agent")
	case http.StatusNotFound:
		return nil, fmt.Errorf("no API at %s - check the URL points to api.php", cfg.APIURL)
	}
	return nil, fmt.Errorf("unexpected status code: %d", apiErr.StatusCode)
}
