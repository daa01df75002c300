package scan

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dazed/pkg/cache"
	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/deps/java"
	"github.com/matzehuels/dazed/pkg/deps/javascript"
	"github.com/matzehuels/dazed/pkg/integrations"
)

// fakeHost serves organizations and repositories from memory.
type fakeHost struct {
	mu sync.Mutex

	orgs  []string
	repos map[string][]integrations.Repository // org -> repositories
	files map[string]map[string]string         // "org/repo" -> path -> content

	empty    map[string]bool // "org/repo" without commits
	failList map[string]int  // "org/repo" -> ListFiles failures left
	failFile map[string]int  // "org/repo/path" -> FileContent failures left
	failOrg  map[string]int  // org -> ListRepositories failures left
	rate     integrations.RateStatus

	listCalls map[string]int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		repos:     make(map[string][]integrations.Repository),
		files:     make(map[string]map[string]string),
		empty:     make(map[string]bool),
		failList:  make(map[string]int),
		failFile:  make(map[string]int),
		failOrg:   make(map[string]int),
		rate:      integrations.RateStatus{Unlimited: true},
		listCalls: make(map[string]int),
	}
}

func (h *fakeHost) addRepo(org, repo string, files map[string]string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.repos[org]; !ok {
		h.orgs = append(h.orgs, org)
	}
	h.repos[org] = append(h.repos[org], integrations.Repository{Name: repo, DefaultBranch: "main"})
	h.files[org+"/"+repo] = files
}

func (h *fakeHost) Name() string { return "fake" }

func (h *fakeHost) ListOrganizations(context.Context) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.orgs...), nil
}

func (h *fakeHost) ListRepositories(_ context.Context, org string) ([]integrations.Repository, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failOrg[org] > 0 {
		h.failOrg[org]--
		return nil, integrations.ErrNetwork
	}
	repos, ok := h.repos[org]
	if !ok {
		return nil, integrations.ErrNotFound
	}
	return append([]integrations.Repository(nil), repos...), nil
}

func (h *fakeHost) ListFiles(_ context.Context, org, repo, _ string) ([]integrations.FileEntry, error) {
	key := org + "/" + repo
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listCalls[key]++
	if h.failList[key] > 0 {
		h.failList[key]--
		return nil, integrations.ErrNetwork
	}
	if h.empty[key] {
		return nil, integrations.ErrEmptyRepository
	}
	files, ok := h.files[key]
	if !ok {
		return nil, integrations.ErrNotFound
	}
	var out []integrations.FileEntry
	for p := range files {
		out = append(out, integrations.FileEntry{Path: p})
	}
	return out, nil
}

func (h *fakeHost) FileContent(_ context.Context, org, repo, path string) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if key := org + "/" + repo + "/" + path; h.failFile[key] > 0 {
		h.failFile[key]--
		return nil, integrations.ErrNetwork
	}
	content, ok := h.files[org+"/"+repo][path]
	if !ok {
		return nil, integrations.ErrNotFound
	}
	return []byte(content), nil
}

func (h *fakeHost) RateLimit(context.Context) (integrations.RateStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rate, nil
}

// registry answers lookups from a fixed set of public names and counts
// network calls per name.
type registry struct {
	mu     sync.Mutex
	public map[string]string
	calls  map[string]int
}

func newRegistry(public map[string]string) *registry {
	return &registry{public: public, calls: make(map[string]int)}
}

func (r *registry) checker(name string) deps.Checker {
	return deps.NewRegistryChecker(name, func(_ context.Context, dep deps.Dependency) (string, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls[dep.Name]++
		if v, ok := r.public[dep.Name]; ok {
			return v, nil
		}
		return "", integrations.ErrNotFound
	})
}

func (r *registry) called(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

func newTestScanner(t interface{ Fatal(...any) }, host Host, reg *registry, opts Options) *Scanner {
	table, err := deps.NewTable(
		javascript.NPM(reg.checker("npm")),
		java.Gradle(reg.checker("maven")),
	)
	if err != nil {
		t.Fatal(err)
	}
	classifier := deps.NewClassifier(deps.NewLookupCache(cache.NewNullCache(), time.Hour), []string{"ignored-pkg"}, []string{"acme"})
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return New(host, table, classifier, opts)
}
