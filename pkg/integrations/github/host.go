package github

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

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

const perPage = 100

// Host lists and reads repositories through the GitHub REST API. It works
// against github.com and GitHub Enterprise Server ("https://ghe.example.com/api/v3").
//
// All methods are safe for concurrent use by multiple goroutines.
type Host struct {
	*integrations.Client
	baseURL string
}

// NewHost creates a GitHub host client. An empty baseURL selects
// [DefaultBaseURL]; an empty token issues unauthenticated requests, which
// GitHub limits to 60 per hour.
//
// Host responses are never cached: a scan must see the current state of
// every repository.
func NewHost(baseURL, token string) *Host {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &Host{
		Client:  integrations.NewClient(cache.NewNullCache(), "github:"+integrations.HostOf(baseURL), 0, headers),
		baseURL: baseURL,
	}
}

// Name identifies the host in reports.
func (h *Host) Name() string { return "github" }

// ListOrganizations returns every organization visible on the instance,
// following the "since" cursor until an empty page.
func (h *Host) ListOrganizations(ctx context.Context) ([]string, error) {
	var names []string
	var since int64
	for {
		var page []apiOrg
		url := fmt.Sprintf("%s/organizations?per_page=%d&since=%d", h.baseURL, perPage, since)
		if err := h.Get(ctx, url, &page); err != nil {
			return nil, wrapHostErr(err, "list organizations")
		}
		if len(page) == 0 {
			return names, nil
		}
		for _, o := range page {
			names = append(names, o.Login)
		}
		since = page[len(page)-1].ID
	}
}

// ListRepositories returns every repository of org.
func (h *Host) ListRepositories(ctx context.Context, org string) ([]integrations.Repository, error) {
	if err := ValidateOwner(org); err != nil {
		return nil, err
	}
	var repos []integrations.Repository
	for page := 1; ; page++ {
		var batch []apiRepo
		url := fmt.Sprintf("%s/orgs/%s/repos?per_page=%d&page=%d", h.baseURL, org, perPage, page)
		if err := h.Get(ctx, url, &batch); err != nil {
			return nil, wrapHostErr(err, "list repositories of %s", org)
		}
		for _, r := range batch {
			repos = append(repos, integrations.Repository{
				Name:          r.Name,
				DefaultBranch: r.DefaultBranch,
				Archived:      r.Archived,
				Empty:         r.Size == 0 && r.DefaultBranch == "",
			})
		}
		if len(batch) < perPage {
			return repos, nil
		}
	}
}

// ListFiles returns every blob reachable from branch. An empty branch
// resolves to HEAD. A repository without commits yields
// [integrations.ErrEmptyRepository].
func (h *Host) ListFiles(ctx context.Context, org, repo, branch string) ([]integrations.FileEntry, error) {
	if err := ValidateOwner(org); err != nil {
		return nil, err
	}
	if err := ValidateRepo(repo); err != nil {
		return nil, err
	}
	if branch == "" {
		branch = "HEAD"
	}
	var tree apiTree
	url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", h.baseURL, org, repo, integrations.PathEscape(branch))
	if err := h.Get(ctx, url, &tree); err != nil {
		return nil, wrapHostErr(err, "list files of %s/%s", org, repo)
	}

	files := make([]integrations.FileEntry, 0, len(tree.Tree))
	for _, e := range tree.Tree {
		if e.Type == "blob" {
			files = append(files, integrations.FileEntry{Path: e.Path})
		}
	}
	return files, nil
}

// FileContent returns the raw bytes of path on the default branch.
func (h *Host) FileContent(ctx context.Context, org, repo, path string) ([]byte, error) {
	if err := dazederrors.ValidatePath(path); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", h.baseURL, org, repo, escapePath(path))
	resp, err := h.GetRaw(ctx, url, map[string]string{"Accept": "application/vnd.github.raw"})
	if err != nil {
		return nil, wrapHostErr(err, "fetch %s/%s/%s", org, repo, path)
	}
	return resp.Body, nil
}

// RateLimit reports the core API budget. Instances with rate limiting
// disabled answer 404 and are reported as unlimited.
func (h *Host) RateLimit(ctx context.Context) (integrations.RateStatus, error) {
	var rl apiRateLimit
	if err := h.Get(ctx, h.baseURL+"/rate_limit", &rl); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return integrations.RateStatus{Unlimited: true}, nil
		}
		return integrations.RateStatus{}, wrapHostErr(err, "read rate limit")
	}
	core := rl.Resources.Core
	return integrations.RateStatus{
		Remaining: core.Remaining,
		Reset:     time.Unix(core.Reset, 0),
	}, nil
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = integrations.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// wrapHostErr keeps the integrations sentinels reachable through errors.Is
// while attaching a coded error for the report.
func wrapHostErr(err error, format string, args ...any) error {
	code := dazederrors.ErrCodeHostFailed
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		code = dazederrors.ErrCodeNotFound
	case errors.Is(err, integrations.ErrEmptyRepository):
		code = dazederrors.ErrCodeEmptyRepository
	case errors.Is(err, integrations.ErrRateLimited):
		code = dazederrors.ErrCodeRateLimited
	case errors.Is(err, integrations.ErrUnauthorized):
		code = dazederrors.ErrCodeUnauthorized
	}
	return dazederrors.Wrap(code, err, format, args...)
}
