package deps

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Classification buckets the dependency names of one file. Every checked
// name lands in exactly one of Vulnerable, Sus or Safe. A name whose
// lookups all failed appears only in Errors and is never Vulnerable.
type Classification struct {
	Vulnerable []string
	Sus        []string
	Safe       []string
	Errors     []LookupError
}

// LookupError is a dependency whose registry lookup failed.
type LookupError struct {
	Name string
	Err  error
}

func (e LookupError) Error() string { return e.Name + ": " + e.Err.Error() }

func (e LookupError) Unwrap() error { return e.Err }

// Classifier decides which dependencies are claimable on a public registry.
type Classifier struct {
	Lookups *LookupCache
	Ignore  []string // Exact names never checked
	Private []string // Name substrings that mark a public hit as suspicious
	Workers int      // Concurrent lookups; DefaultLookupWorkers if zero
}

// NewClassifier returns a Classifier sharing lookups across calls.
func NewClassifier(lookups *LookupCache, ignore, private []string) *Classifier {
	if lookups == nil {
		lookups = NewLookupCache(nil, 0)
	}
	return &Classifier{Lookups: lookups, Ignore: ignore, Private: private, Workers: DefaultLookupWorkers}
}

type outcome struct {
	name    string
	version PublicVersion
	err     error
}

// Classify looks every non-ignored dependency up with checker and buckets
// the names:
//
//   - not found publicly: Vulnerable
//   - found, and the name contains a private keyword: Sus
//   - found otherwise: Safe
//
// A name seen under several groups takes the worst bucket. Buckets are
// deduplicated and sorted. The only error returned is ctx's.
func (c *Classifier) Classify(ctx context.Context, checker Checker, deps []Dependency) (Classification, error) {
	unique := c.filter(deps)
	results := make([]outcome, len(unique))

	workers := c.Workers
	if workers <= 0 {
		workers = DefaultLookupWorkers
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, dep := range unique {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := c.Lookups.Lookup(ctx, checker, dep)
			results[i] = outcome{name: dep.Name, version: v, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Classification{}, err
	}
	if err := ctx.Err(); err != nil {
		return Classification{}, err
	}
	return c.bucket(results), nil
}

// filter drops ignored and empty names and collapses duplicates by identity.
func (c *Classifier) filter(deps []Dependency) []Dependency {
	ignore := make(map[string]bool, len(c.Ignore))
	for _, n := range c.Ignore {
		ignore[n] = true
	}
	seen := make(map[string]bool, len(deps))
	var out []Dependency
	for _, d := range deps {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" || ignore[d.Name] {
			continue
		}
		key := d.Key()
		if d.Resolved != "" || d.Internal {
			key += "\x00resolved"
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

const (
	bucketSafe = iota + 1
	bucketSus
	bucketVulnerable
)

func (c *Classifier) bucket(results []outcome) Classification {
	worst := make(map[string]int)
	var cls Classification
	failed := make(map[string]bool)
	for _, r := range results {
		if r.err != nil {
			if !failed[r.name] {
				failed[r.name] = true
				cls.Errors = append(cls.Errors, LookupError{Name: r.name, Err: r.err})
			}
			continue
		}
		b := bucketSafe
		switch {
		case !r.version.Found:
			b = bucketVulnerable
		case c.isPrivate(r.name):
			b = bucketSus
		}
		if b > worst[r.name] {
			worst[r.name] = b
		}
	}
	for name, b := range worst {
		switch b {
		case bucketVulnerable:
			cls.Vulnerable = append(cls.Vulnerable, name)
		case bucketSus:
			cls.Sus = append(cls.Sus, name)
		default:
			cls.Safe = append(cls.Safe, name)
		}
	}
	sort.Strings(cls.Vulnerable)
	sort.Strings(cls.Sus)
	sort.Strings(cls.Safe)
	sort.Slice(cls.Errors, func(i, j int) bool {
		return LessFold(cls.Errors[i].Name, cls.Errors[j].Name)
	})
	return cls
}

func (c *Classifier) isPrivate(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range c.Private {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
