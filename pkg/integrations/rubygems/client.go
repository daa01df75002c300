package rubygems

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/dazed/pkg/cache"
	dazederrors "github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations"
)

// GemInfo holds the public state of a Ruby gem.
type GemInfo struct {
	Name    string `json:"name"`    // Gem name
	Version string `json:"version"` // Current version
}

// Client provides access to the RubyGems API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a RubyGems client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "rubygems", cacheTTL, nil),
		baseURL: "https://rubygems.org/api/v1",
	}
}

// FetchGem retrieves the current version of a gem.
//
// Returns:
//   - GemInfo on success
//   - [integrations.ErrNotFound] if the gem doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchGem(ctx context.Context, gem string, refresh bool) (*GemInfo, error) {
	gem = strings.TrimSpace(gem)
	if err := dazederrors.ValidatePackageName(gem); err != nil {
		return nil, err
	}

	var info GemInfo
	err := c.Cached(ctx, gem, refresh, &info, func() error {
		return c.fetch(ctx, gem, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, gem string, info *GemInfo) error {
	var data gemResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/gems/%s.json", c.baseURL, integrations.PathEscape(gem)), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: rubygems gem %s", err, gem)
		}
		return err
	}

	*info = GemInfo{Name: data.Name, Version: data.Version}
	return nil
}

type gemResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
