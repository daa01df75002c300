package maven

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

// RequestsPerSecond is the self-imposed ceiling for Maven Central search.
// The search service throttles clients that exceed it.
const RequestsPerSecond = 10

// ArtifactInfo holds the public state of a Maven artifact.
type ArtifactInfo struct {
	GroupID    string `json:"group_id"`    // Maven groupId of the first hit
	ArtifactID string `json:"artifact_id"` // Maven artifactId
	Version    string `json:"version"`     // Latest version
}

// Client provides access to the Maven Central search API.
// Requests are throttled to [RequestsPerSecond] across all goroutines
// sharing the client.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Maven Central search client.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "maven", cacheTTL, nil).WithRateLimit(RequestsPerSecond, 1),
		baseURL: "https://search.maven.org/solrsearch/select",
	}
}

// FetchArtifact searches for artifactID, restricted to groupID when it is
// non-empty.
//
// Returns:
//   - ArtifactInfo for the first hit
//   - [integrations.ErrNotFound] if the search has no hits
//   - [integrations.ErrNetwork] for HTTP failures
func (c *Client) FetchArtifact(ctx context.Context, groupID, artifactID string, refresh bool) (*ArtifactInfo, error) {
	groupID = strings.TrimSpace(groupID)
	artifactID = strings.TrimSpace(artifactID)
	if err := dazederrors.ValidatePackageName(artifactID); err != nil {
		return nil, err
	}

	key := groupID + ":" + artifactID

	var info ArtifactInfo
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, groupID, artifactID, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, groupID, artifactID string, info *ArtifactInfo) error {
	query := fmt.Sprintf("a:%q", artifactID)
	if groupID != "" {
		query += fmt.Sprintf(" AND g:%q", groupID)
	}
	url := fmt.Sprintf("%s?q=%s&rows=1&wt=json", c.baseURL, integrations.URLEncode(query))

	var resp searchResponse
	if err := c.Get(ctx, url, &resp); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: maven artifact %s:%s", err, groupID, artifactID)
		}
		return err
	}

	if resp.Response.NumFound == 0 || len(resp.Response.Docs) == 0 {
		return fmt.Errorf("%w: maven artifact %s:%s", integrations.ErrNotFound, groupID, artifactID)
	}

	doc := resp.Response.Docs[0]
	version := doc.LatestVersion
	if version == "" {
		version = doc.Version
	}

	*info = ArtifactInfo{
		GroupID:    doc.GroupID,
		ArtifactID: doc.ArtifactID,
		Version:    version,
	}
	return nil
}

type searchResponse struct {
	Response struct {
		NumFound int         `json:"numFound"`
		Docs     []searchDoc `json:"docs"`
	} `json:"response"`
}

type searchDoc struct {
	GroupID       string `json:"g"`
	ArtifactID    string `json:"a"`
	Version       string `json:"v"`
	LatestVersion string `json:"latestVersion"`
}
