package scan

import (
	"context"
	"errors"
	"path"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dazed/pkg/deps"
	dazederrors "github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations"
	"github.com/matzehuels/dazed/pkg/observability"
)

// Default pool widths and rate-limit settings.
const (
	DefaultGroups             = 3
	DefaultRepoWorkers        = 200
	DefaultFileWorkers        = 5
	DefaultRateLimitThreshold = 500
	DefaultRateLimitPadding   = 2 * time.Second
)

// Options configures a Scanner. Zero values select the defaults.
type Options struct {
	Groups             int           // Concurrent organization groups in a fleet scan
	RepoWorkers        int           // Concurrent repositories per organization
	FileWorkers        int           // Concurrent file fetches per repository
	RateLimitThreshold int           // Pause when fewer host requests remain
	RateLimitPadding   time.Duration // Extra sleep after the budget resets
	Parse              deps.ParseOptions
	Logger             *log.Logger
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Groups <= 0 {
		o.Groups = DefaultGroups
	}
	if o.RepoWorkers <= 0 {
		o.RepoWorkers = DefaultRepoWorkers
	}
	if o.FileWorkers <= 0 {
		o.FileWorkers = DefaultFileWorkers
	}
	if o.RateLimitThreshold <= 0 {
		o.RateLimitThreshold = DefaultRateLimitThreshold
	}
	if o.RateLimitPadding <= 0 {
		o.RateLimitPadding = DefaultRateLimitPadding
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	o.Parse = o.Parse.WithDefaults()
	return o
}

// Scanner scans repositories of one host. It is safe for concurrent use.
type Scanner struct {
	host       Host
	table      *deps.Table
	classifier *deps.Classifier
	gate       *RateGate
	opts       Options
	logger     *log.Logger

	scanned atomic.Int64
}

// New creates a Scanner that matches files against table and classifies
// their dependencies with classifier.
func New(host Host, table *deps.Table, classifier *deps.Classifier, opts Options) *Scanner {
	opts = opts.WithDefaults()
	return &Scanner{
		host:       host,
		table:      table,
		classifier: classifier,
		gate:       NewRateGate(host, opts.RateLimitThreshold, opts.RateLimitPadding, opts.Logger),
		opts:       opts,
		logger:     opts.Logger,
	}
}

// Host returns the scanned host.
func (s *Scanner) Host() Host { return s.host }

// Scanned returns the number of organizations scanned so far.
func (s *Scanner) Scanned() int64 { return s.scanned.Load() }

// ScanRepository scans the default branch of one repository.
//
// An empty or missing repository yields an empty result. Host failures are
// recorded in the result's Errors; parse and lookup failures are recorded
// on the affected file.
func (s *Scanner) ScanRepository(ctx context.Context, org string, repo integrations.Repository) RepoResult {
	res := RepoResult{Repo: repo.Name, Files: []FileResult{}}
	if repo.Empty {
		return res
	}

	start := time.Now()
	observability.Scan().OnRepositoryStart(ctx, org, repo.Name)
	err := s.scanRepository(ctx, org, repo, &res)
	observability.Scan().OnRepositoryComplete(ctx, org, repo.Name, len(res.Files), time.Since(start), err)

	if err != nil {
		s.logger.Debug("repository failed", "org", org, "repo", repo.Name, "err", err)
		res.Errors = append(res.Errors, err.Error())
	}
	return res
}

func (s *Scanner) scanRepository(ctx context.Context, org string, repo integrations.Repository, res *RepoResult) error {
	if err := s.gate.Wait(ctx); err != nil {
		return err
	}

	entries, err := s.host.ListFiles(ctx, org, repo.Name, repo.DefaultBranch)
	if errors.Is(err, integrations.ErrEmptyRepository) || errors.Is(err, integrations.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	var fetchErrs []error
	fetch := func(ctx context.Context, p string) ([]byte, error) {
		content, err := s.host.FileContent(ctx, org, repo.Name, p)
		if err != nil && !errors.Is(err, integrations.ErrNotFound) {
			fetchErrs = append(fetchErrs, err)
		}
		return content, err
	}
	files, configErrs := s.table.Resolve(ctx, paths, fetch, s.opts.Parse)

	results := make([]FileResult, len(files))
	hostErrs := make([]error, len(files), len(files)+len(fetchErrs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FileWorkers)
	for i, f := range files {
		g.Go(func() error {
			results[i], hostErrs[i] = s.scanFile(gctx, org, repo.Name, f)
			return nil
		})
	}
	_ = g.Wait()

	for _, fe := range configErrs {
		results = append(results, FileResult{
			File:       fe.Path,
			Vulnerable: []string{},
			Sus:        []string{},
			Errors:     []string{fe.Err.Error()},
		})
	}
	slices.SortStableFunc(results, func(a, b FileResult) int { return compareFold(a.File, b.File) })
	res.Files = results

	return errors.Join(append(hostErrs, fetchErrs...)...)
}

// scanFile fetches, parses and classifies one file. The second return value
// is a host failure that marks the repository for a retry.
func (s *Scanner) scanFile(ctx context.Context, org, repo string, f deps.ManifestFile) (FileResult, error) {
	res := FileResult{
		File:       f.Path,
		Ecosystem:  f.Ecosystem.Name,
		Vulnerable: []string{},
		Sus:        []string{},
		Override:   f.Overridden,
	}
	if f.Overridden {
		return res, nil
	}

	content, err := s.host.FileContent(ctx, org, repo, f.Path)
	if errors.Is(err, integrations.ErrNotFound) {
		return res, nil
	}
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res, err
	}

	found, err := f.Ecosystem.Parser.Parse(path.Base(f.Path), content, s.opts.Parse)
	if err != nil {
		if !dazederrors.Is(err, dazederrors.ErrCodeParseFailed) {
			err = dazederrors.Wrap(dazederrors.ErrCodeParseFailed, err, "parse %s", f.Path)
		}
		res.Errors = append(res.Errors, err.Error())
		return res, nil
	}

	c, err := s.classifier.Classify(ctx, f.Ecosystem.Checker, found)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res, nil
	}
	res.Vulnerable = c.Vulnerable
	res.Sus = c.Sus
	for _, le := range c.Errors {
		res.Errors = append(res.Errors, le.Error())
	}
	return res, nil
}

// ScanOrganization scans every repository of org. Repositories that hit a
// host failure are retried once, one at a time, after the first pass.
func (s *Scanner) ScanOrganization(ctx context.Context, org string) OrgResult {
	start := time.Now()
	res := OrgResult{Org: org, Repos: []RepoResult{}}

	repos, err := s.host.ListRepositories(ctx, org)
	if err != nil {
		s.logger.Warn("list repositories failed", "org", org, "err", err)
		res.Error = err.Error()
		res.ScanTime = time.Since(start).Seconds()
		return res
	}

	results := make([]RepoResult, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.RepoWorkers)
	for i, r := range repos {
		g.Go(func() error {
			results[i] = s.ScanRepository(gctx, org, r)
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range repos {
		if !results[i].Failed() {
			continue
		}
		s.logger.Info("retrying", "org", org, "repo", r.Name)
		results[i] = s.ScanRepository(ctx, org, r)
	}

	slices.SortStableFunc(results, func(a, b RepoResult) int { return compareFold(a.Repo, b.Repo) })
	for _, r := range results {
		if r.Failed() {
			res.Errors = append(res.Errors, r.Repo)
		}
	}
	res.Repos = results
	res.ScanTime = time.Since(start).Seconds()
	return res
}

// ScanFleet scans every organization on the host. Organizations are split
// by stride into Options.Groups groups; each group scans its organizations
// one after another while the groups run concurrently. Organizations that
// failed are rescanned once after all groups finish.
//
// It returns an error only if the organizations cannot be listed.
func (s *Scanner) ScanFleet(ctx context.Context) ([]OrgResult, error) {
	orgs, err := s.host.ListOrganizations(ctx)
	if err != nil {
		return nil, dazederrors.Wrap(dazederrors.ErrCodeHostFailed, err, "list organizations on %s", s.host.Name())
	}
	s.logger.Info("organizations listed", "host", s.host.Name(), "count", len(orgs))

	chunks := Stride(orgs, s.opts.Groups)
	batches := make(chan []OrgResult, len(chunks))
	for _, chunk := range chunks {
		go func() {
			batches <- s.scanGroup(ctx, chunk)
		}()
	}

	results := make([]OrgResult, 0, len(orgs))
	for range chunks {
		results = append(results, <-batches...)
	}

	for i, o := range results {
		if o.Failed() {
			results[i] = s.retryOrganization(ctx, o)
		}
	}

	slices.SortStableFunc(results, func(a, b OrgResult) int { return compareFold(a.Org, b.Org) })
	return results, nil
}

func (s *Scanner) scanGroup(ctx context.Context, orgs []string) []OrgResult {
	out := make([]OrgResult, 0, len(orgs))
	for _, org := range orgs {
		res := s.ScanOrganization(ctx, org)
		n := s.scanned.Add(1)
		s.logger.Infof("%d: %s (%s)", n, org, time.Duration(res.ScanTime*float64(time.Second)).Round(time.Millisecond))
		out = append(out, res)
	}
	return out
}

// retryOrganization rescans an organization whose listing failed, or only
// the failed repositories of an organization that was listed.
func (s *Scanner) retryOrganization(ctx context.Context, o OrgResult) OrgResult {
	if o.Error != "" {
		s.logger.Info("retrying", "org", o.Org)
		return s.ScanOrganization(ctx, o.Org)
	}

	repos, err := s.host.ListRepositories(ctx, o.Org)
	if err != nil {
		return o
	}
	byName := make(map[string]integrations.Repository, len(repos))
	for _, r := range repos {
		byName[r.Name] = r
	}

	o.Errors = nil
	for i, r := range o.Repos {
		if !r.Failed() {
			continue
		}
		if repo, ok := byName[r.Repo]; ok {
			s.logger.Info("retrying", "org", o.Org, "repo", r.Repo)
			o.Repos[i] = s.ScanRepository(ctx, o.Org, repo)
		}
		if o.Repos[i].Failed() {
			o.Errors = append(o.Errors, r.Repo)
		}
	}
	return o
}

// Stride splits items into n interleaved chunks: chunk i holds items i,
// i+n, i+2n and so on. Empty chunks are omitted.
func Stride[T any](items []T, n int) [][]T {
	if n <= 0 {
		n = 1
	}
	chunks := make([][]T, 0, n)
	for i := 0; i < n && i < len(items); i++ {
		var chunk []T
		for j := i; j < len(items); j += n {
			chunk = append(chunk, items[j])
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func compareFold(a, b string) int {
	switch {
	case deps.LessFold(a, b):
		return -1
	case deps.LessFold(b, a):
		return 1
	}
	return 0
}
