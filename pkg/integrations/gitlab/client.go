package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/dazed/pkg/cache"
	dazederrors "github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations"
)

// DefaultBaseURL is the gitlab.com REST API.
const DefaultBaseURL = "https://gitlab.com/api/v4"

const perPage = 100

// Host lists and reads projects through the GitLab REST API. Top-level
// groups play the role of organizations; projects (including those of
// subgroups) are the repositories and are named by their path relative to
// the group.
//
// GitLab has no endpoint reporting the remaining budget, so Host records
// the RateLimit-* headers of every response and [Host.RateLimit] returns
// the latest observation.
//
// All methods are safe for concurrent use by multiple goroutines.
type Host struct {
	*integrations.Client
	baseURL string

	mu   sync.Mutex
	rate integrations.RateStatus
	seen bool
}

// NewHost creates a GitLab host client. An empty baseURL selects
// [DefaultBaseURL].
func NewHost(baseURL, token string) *Host {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"PRIVATE-TOKEN": token}
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &Host{
		Client:  integrations.NewClient(cache.NewNullCache(), "gitlab:"+integrations.HostOf(baseURL), 0, headers),
		baseURL: baseURL,
	}
}

// Name identifies the host in reports.
func (h *Host) Name() string { return "gitlab" }

// ListOrganizations returns the full paths of all top-level groups visible
// to the token.
func (h *Host) ListOrganizations(ctx context.Context) ([]string, error) {
	var names []string
	err := h.paginate(ctx, h.baseURL+"/groups?top_level_only=true&all_available=true", func(body []byte) (int, error) {
		var page []apiGroup
		if err := decode(body, &page); err != nil {
			return 0, err
		}
		for _, g := range page {
			names = append(names, g.FullPath)
		}
		return len(page), nil
	})
	if err != nil {
		return nil, wrapHostErr(err, "list groups")
	}
	return names, nil
}

// ListRepositories returns every project of group, including subgroups.
func (h *Host) ListRepositories(ctx context.Context, group string) ([]integrations.Repository, error) {
	if err := dazederrors.ValidateOwnerName(group); err != nil {
		return nil, err
	}
	var repos []integrations.Repository
	endpoint := fmt.Sprintf("%s/groups/%s/projects?include_subgroups=true&archived=false", h.baseURL, url.PathEscape(group))
	err := h.paginate(ctx, endpoint, func(body []byte) (int, error) {
		var page []apiProject
		if err := decode(body, &page); err != nil {
			return 0, err
		}
		for _, p := range page {
			repos = append(repos, integrations.Repository{
				Name:          strings.TrimPrefix(p.PathWithNamespace, group+"/"),
				DefaultBranch: p.DefaultBranch,
				Archived:      p.Archived,
				Empty:         p.EmptyRepo,
			})
		}
		return len(page), nil
	})
	if err != nil {
		return nil, wrapHostErr(err, "list projects of %s", group)
	}
	return repos, nil
}

// ListFiles returns every blob of the project tree at branch.
func (h *Host) ListFiles(ctx context.Context, group, project, branch string) ([]integrations.FileEntry, error) {
	id, err := projectID(group, project)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/projects/%s/repository/tree?recursive=true", h.baseURL, id)
	if branch != "" {
		endpoint += "&ref=" + url.QueryEscape(branch)
	}

	var files []integrations.FileEntry
	err = h.paginate(ctx, endpoint, func(body []byte) (int, error) {
		var page []apiTreeEntry
		if err := decode(body, &page); err != nil {
			return 0, err
		}
		for _, e := range page {
			if e.Type == "blob" {
				files = append(files, integrations.FileEntry{Path: e.Path})
			}
		}
		return len(page), nil
	})
	if err != nil {
		// GitLab answers 404 for the tree of a project without commits.
		if errors.Is(err, integrations.ErrNotFound) {
			err = fmt.Errorf("%w: %v", integrations.ErrEmptyRepository, err)
		}
		return nil, wrapHostErr(err, "list files of %s/%s", group, project)
	}
	return files, nil
}

// FileContent returns the raw bytes of path at the project's HEAD.
func (h *Host) FileContent(ctx context.Context, group, project, path string) ([]byte, error) {
	id, err := projectID(group, project)
	if err != nil {
		return nil, err
	}
	if err := dazederrors.ValidatePath(path); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/projects/%s/repository/files/%s/raw?ref=HEAD", h.baseURL, id, url.PathEscape(path))
	resp, err := h.get(ctx, endpoint)
	if err != nil {
		return nil, wrapHostErr(err, "fetch %s/%s/%s", group, project, path)
	}
	return resp.Body, nil
}

// RateLimit returns the budget reported by the most recent response.
// Before any response has been seen the host is reported as unlimited.
func (h *Host) RateLimit(ctx context.Context) (integrations.RateStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.seen {
		return integrations.RateStatus{Unlimited: true}, nil
	}
	return h.rate, nil
}

func (h *Host) get(ctx context.Context, endpoint string) (*integrations.Response, error) {
	resp, err := h.GetRaw(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	h.observe(resp)
	return resp, nil
}

func (h *Host) observe(resp *integrations.Response) {
	remaining, err := strconv.Atoi(resp.Header.Get("RateLimit-Remaining"))
	if err != nil {
		return
	}
	reset, _ := strconv.ParseInt(resp.Header.Get("RateLimit-Reset"), 10, 64)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.rate = integrations.RateStatus{Remaining: remaining, Reset: time.Unix(reset, 0)}
	h.seen = true
}

// paginate walks offset pagination using the X-Next-Page header, falling
// back to stopping at the first short page.
func (h *Host) paginate(ctx context.Context, endpoint string, handle func(body []byte) (int, error)) error {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	for page := 1; ; page++ {
		resp, err := h.get(ctx, fmt.Sprintf("%s%sper_page=%d&page=%d", endpoint, sep, perPage, page))
		if err != nil {
			return err
		}
		n, err := handle(resp.Body)
		if err != nil {
			return err
		}
		next := resp.Header.Get("X-Next-Page")
		if next == "" && n < perPage {
			return nil
		}
		if next == "" && resp.Header.Get("X-Page") != "" {
			return nil
		}
	}
}

func projectID(group, project string) (string, error) {
	if err := dazederrors.ValidateOwnerName(group); err != nil {
		return "", err
	}
	if err := dazederrors.ValidateOwnerName(project); err != nil {
		return "", err
	}
	return url.PathEscape(group + "/" + project), nil
}

func wrapHostErr(err error, format string, args ...any) error {
	code := dazederrors.ErrCodeHostFailed
	switch {
	case errors.Is(err, integrations.ErrEmptyRepository):
		code = dazederrors.ErrCodeEmptyRepository
	case errors.Is(err, integrations.ErrNotFound):
		code = dazederrors.ErrCodeNotFound
	case errors.Is(err, integrations.ErrRateLimited):
		code = dazederrors.ErrCodeRateLimited
	case errors.Is(err, integrations.ErrUnauthorized):
		code = dazederrors.ErrCodeUnauthorized
	}
	return dazederrors.Wrap(code, err, format, args...)
}
