package python

import (
	"bufio"
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
)

// PipParser reads requirements.txt, Pipfile and Pipfile.lock. Each format
// can name the package indexes it installs from; when every index is
// internal the file yields nothing.
type PipParser struct{}

// Parse implements deps.Parser.
func (PipParser) Parse(filename string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	opts = opts.WithDefaults()
	switch strings.ToLower(filename) {
	case "pipfile":
		return parsePipfile(content, opts)
	case "pipfile.lock":
		return parsePipfileLock(content, opts)
	default:
		return parseRequirements(content, opts), nil
	}
}

var (
	reqNameRe  = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)`)
	reqOpRe    = regexp.MustCompile(`(===|==|>=|<=|!=|~=|<|>)\s*([^\s,;]+)`)
	indexOptRe = regexp.MustCompile(`^(?:-i|--index-url|--extra-index-url)[\s=]+(\S+)`)
)

// parseRequirements reads one requirement per line. Options other than
// index URLs, editable installs and nested requirement files are skipped.
func parseRequirements(content []byte, opts deps.ParseOptions) []deps.Dependency {
	var indexes []string
	var out []deps.Dependency

	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := indexOptRe.FindStringSubmatch(line); m != nil {
			indexes = append(indexes, m[1])
			continue
		}
		if strings.HasPrefix(line, "-") || deps.LooksLikeURL(line) {
			continue
		}

		m := reqNameRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		dep := deps.Dependency{Name: m[1], Version: deps.UnknownVersion}
		spec := strings.TrimSpace(line[len(m[1]):])
		if end := strings.Index(spec, "]"); strings.HasPrefix(spec, "[") && end >= 0 {
			spec = strings.TrimSpace(spec[end+1:])
		}
		if spec, _, _ = strings.Cut(spec, ";"); strings.HasPrefix(spec, "@") {
			src := strings.TrimSpace(spec[1:])
			dep.Resolved = src
			dep.Internal = opts.IsInternalURL(src)
		} else if v := reqOpRe.FindStringSubmatch(spec); v != nil {
			dep.Version = v[2]
		}
		out = append(out, dep)
	}
	if opts.AllInternal(indexes) {
		return nil
	}
	return out
}

type pipfile struct {
	Source      []pipfileSource           `toml:"source"`
	Packages    map[string]toml.Primitive `toml:"packages"`
	DevPackages map[string]toml.Primitive `toml:"dev-packages"`
}

type pipfileSource struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

type pipfileSpec struct {
	Version string `toml:"version"`
	Git     string `toml:"git"`
	Path    string `toml:"path"`
	File    string `toml:"file"`
	Index   string `toml:"index"`
}

func parsePipfile(content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	var pf pipfile
	md, err := toml.Decode(string(content), &pf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse Pipfile")
	}

	urls := make([]string, 0, len(pf.Source))
	internalIndex := make(map[string]bool)
	for _, s := range pf.Source {
		urls = append(urls, s.URL)
		internalIndex[s.Name] = opts.IsInternalURL(s.URL)
	}
	if opts.AllInternal(urls) {
		return nil, nil
	}

	var out []deps.Dependency
	for _, table := range []map[string]toml.Primitive{pf.Packages, pf.DevPackages} {
		for _, name := range sortedKeys(table) {
			dep := deps.Dependency{Name: name, Version: deps.UnknownVersion}

			var version string
			var spec pipfileSpec
			if md.PrimitiveDecode(table[name], &version) == nil {
				dep.Version = pipVersion(version)
			} else if md.PrimitiveDecode(table[name], &spec) == nil {
				dep.Version = pipVersion(spec.Version)
				if src := spec.Git + spec.Path + spec.File; src != "" {
					dep.Resolved = src
					dep.Internal = opts.IsInternalURL(src)
				} else if spec.Index != "" && internalIndex[spec.Index] {
					dep.Internal = true
				}
			}
			out = append(out, dep)
		}
	}
	return out, nil
}

// pipVersion strips comparison operators; "*" and empty mean any version.
func pipVersion(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "*" {
		return deps.UnknownVersion
	}
	if m := reqOpRe.FindStringSubmatch(spec); m != nil {
		return m[2]
	}
	return spec
}

type pipfileLock struct {
	Meta struct {
		Sources []pipfileSource `json:"sources"`
	} `json:"_meta"`
}

type lockedRequirement struct {
	Version string `json:"version"`
	Git     string `json:"git"`
	Path    string `json:"path"`
	File    string `json:"file"`
	Index   string `json:"index"`
}

// parsePipfileLock reads every group (default, develop, ...) of a
// Pipfile.lock.
func parsePipfileLock(content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse Pipfile.lock")
	}
	var lock pipfileLock
	if err := json.Unmarshal(content, &lock); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse Pipfile.lock")
	}

	urls := make([]string, 0, len(lock.Meta.Sources))
	internalIndex := make(map[string]bool)
	for _, s := range lock.Meta.Sources {
		urls = append(urls, s.URL)
		internalIndex[s.Name] = opts.IsInternalURL(s.URL)
	}
	if opts.AllInternal(urls) {
		return nil, nil
	}

	var out []deps.Dependency
	for _, group := range sortedKeys(doc) {
		if group == "_meta" {
			continue
		}
		var reqs map[string]lockedRequirement
		if json.Unmarshal(doc[group], &reqs) != nil {
			continue
		}
		for _, name := range sortedKeys(reqs) {
			r := reqs[name]
			dep := deps.Dependency{Name: name, Version: pipVersion(r.Version)}
			if src := r.Git + r.Path + r.File; src != "" {
				dep.Resolved = src
				dep.Internal = opts.IsInternalURL(src)
			} else if r.Index != "" && internalIndex[r.Index] {
				dep.Internal = true
			}
			out = append(out, dep)
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
