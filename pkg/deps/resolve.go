package deps

import (
	"context"
	"path"
	"sort"
	"strings"
)

// ManifestFile is a repository file recognized by an ecosystem. An
// overridden file is reported but never parsed.
type ManifestFile struct {
	Path       string
	Ecosystem  *Ecosystem
	Kind       FileKind
	Overridden bool
}

// FileError records a failure tied to one repository file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// ConfigFetcher returns the content of a repository file.
type ConfigFetcher func(ctx context.Context, path string) ([]byte, error)

type overrideKey struct {
	dir, eco, base string
}

// Resolve selects the manifests and lockfiles among paths and marks the
// overridden ones. Overrides are scoped to a directory: a lockfile or
// config only neutralizes files of its own ecosystem next to it.
//
// Config files are fetched to decide whether every source they declare is
// internal. A config that cannot be fetched or parsed overrides nothing and
// is reported in the returned errors. Config files themselves are not part
// of the result. The result is sorted by path and does not depend on the
// order of paths.
func (t *Table) Resolve(ctx context.Context, paths []string, fetch ConfigFetcher, opts ParseOptions) ([]ManifestFile, []FileError) {
	opts = opts.WithDefaults()

	seen := make(map[string]bool, len(paths))
	var files []ManifestFile
	var problems []FileError
	overridden := make(map[overrideKey]bool)

	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true

		e, kind, ok := t.Match(p)
		if !ok {
			continue
		}
		dir, base := path.Dir(p), path.Base(p)

		if kind == KindConfig {
			internal, err := t.configInternal(ctx, e, p, fetch, opts)
			if err != nil {
				problems = append(problems, FileError{Path: p, Err: err})
				continue
			}
			if !internal {
				continue
			}
		}
		for _, n := range e.overriddenBy(base, kind) {
			overridden[overrideKey{dir, e.Name, strings.ToLower(n)}] = true
		}
		if kind != KindConfig {
			files = append(files, ManifestFile{Path: p, Ecosystem: e, Kind: kind})
		}
	}

	for i := range files {
		f := &files[i]
		key := overrideKey{path.Dir(f.Path), f.Ecosystem.Name, strings.ToLower(path.Base(f.Path))}
		f.Overridden = overridden[key]
	}
	sort.Slice(files, func(i, j int) bool {
		return LessFold(files[i].Path, files[j].Path)
	})
	return files, problems
}

func (t *Table) configInternal(ctx context.Context, e *Ecosystem, p string, fetch ConfigFetcher, opts ParseOptions) (bool, error) {
	if fetch == nil {
		return false, nil
	}
	content, err := fetch(ctx, p)
	if err != nil {
		return false, err
	}
	return e.Config.AllSourcesInternal(path.Base(p), content, opts)
}

// LessFold orders strings case-insensitively, falling back to a byte
// comparison so the order is total.
func LessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
