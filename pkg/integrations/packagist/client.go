package packagist

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

// PackageInfo holds the public state of a Composer package.
type PackageInfo struct {
	Name    string `json:"name"`    // vendor/package
	Version string `json:"version"` // First version listed by the p2 metadata
}

// Client provides access to the Packagist metadata API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Packagist client.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "packagist", cacheTTL, nil),
		baseURL: "https://repo.packagist.org",
	}
}

// FetchPackage retrieves the newest version of a vendor/package name.
//
// Returns [integrations.ErrNotFound] when Packagist does not know the
// package or lists no versions for it.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))
	if err := dazederrors.ValidatePackageName(pkg); err != nil {
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
	var data p2Response
	if err := c.Get(ctx, fmt.Sprintf("%s/p2/%s.json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: packagist package %s", err, pkg)
		}
		return err
	}

	versions := data.Packages[pkg]
	if len(versions) == 0 {
		return fmt.Errorf("%w: packagist package %s has no versions", integrations.ErrNotFound, pkg)
	}

	*info = PackageInfo{Name: pkg, Version: versions[0].Version}
	return nil
}

type p2Response struct {
	Packages map[string][]struct {
		Version string `json:"version"`
	} `json:"packages"`
}
