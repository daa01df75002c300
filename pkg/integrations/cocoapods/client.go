package cocoapods

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/dazed/pkg/cache"
	dazederrors "github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations"
)

// Public search-only credentials of the cocoapods.org search index.
const (
	searchURL  = "https://wbhhamhynm-dsn.algolia.net/1/indexes/cocoapods/query"
	algoliaApp = "WBHHAMHYNM"
	algoliaKey = "4f7544ca8701f9bf2a4e55daff1b09e9"
)

// PodInfo holds the public state of a pod.
type PodInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Client searches the CocoaPods trunk index.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a CocoaPods search client.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client: integrations.NewClient(backend, "cocoapods", cacheTTL, map[string]string{
			"X-Algolia-Application-Id": algoliaApp,
			"X-Algolia-API-Key":        algoliaKey,
		}),
		baseURL: searchURL,
	}
}

// FetchPod searches for pod. Only an exact name match on the top hit counts
// as found; fuzzy hits for other pods are reported as
// [integrations.ErrNotFound].
func (c *Client) FetchPod(ctx context.Context, pod string, refresh bool) (*PodInfo, error) {
	pod = strings.TrimSpace(pod)
	if err := dazederrors.ValidatePackageName(pod); err != nil {
		return nil, err
	}

	var info PodInfo
	err := c.Cached(ctx, pod, refresh, &info, func() error {
		return c.fetch(ctx, pod, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pod string, info *PodInfo) error {
	var data searchResponse
	body := map[string]string{"params": "query=" + integrations.URLEncode(pod)}
	if err := c.Post(ctx, c.baseURL, body, nil, &data); err != nil {
		return err
	}

	if len(data.Hits) == 0 || data.Hits[0].Name != pod {
		return fmt.Errorf("%w: pod %s", integrations.ErrNotFound, pod)
	}
	*info = PodInfo{Name: data.Hits[0].Name, Version: data.Hits[0].Version}
	return nil
}

type searchResponse struct {
	Hits []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"hits"`
}
