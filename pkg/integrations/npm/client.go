package npm

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

const (
	// NpmRegistry is the public npm registry.
	NpmRegistry = "https://registry.npmjs.org"

	// YarnRegistry is the public yarn mirror of the npm registry.
	YarnRegistry = "https://registry.yarnpkg.com"
)

// PackageInfo holds the public state of an npm package.
type PackageInfo struct {
	Name    string `json:"name"`    // Package name as published
	Version string `json:"version"` // Version tagged "latest" in dist-tags
}

// Client provides access to an npm-compatible registry.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the public npm registry.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return NewClientForRegistry(backend, cacheTTL, NpmRegistry)
}

// NewClientForRegistry creates a client for any npm-compatible registry,
// such as [YarnRegistry]. Responses are cached per registry host.
func NewClientForRegistry(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		Client:  integrations.NewClient(backend, "npm:"+integrations.HostOf(baseURL), cacheTTL, nil),
		baseURL: baseURL,
	}
}

// FetchPackage retrieves the latest published version of pkg.
//
// Returns:
//   - PackageInfo on success
//   - [integrations.ErrNotFound] if the registry has no such package
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = strings.TrimSpace(pkg)
	if err := dazederrors.ValidateNpmPackageName(pkg); err != nil {
		return nil, err
	}

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.PathEscape(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	// Unpublished packages keep a tombstone document without dist-tags.
	if data.DistTags.Latest == "" {
		return fmt.Errorf("%w: npm package %s has no latest version", integrations.ErrNotFound, pkg)
	}

	*info = PackageInfo{
		Name:    data.Name,
		Version: data.DistTags.Latest,
	}
	return nil
}

type registryResponse struct {
	Name     string `json:"name"`
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
}
