package javascript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
)

// dependencyFields are the package.json and lockfile v1 keys holding
// dependency maps (or, for bundled dependencies, name lists).
var dependencyFields = []string{
	"dependencies",
	"devDependencies",
	"peerDependencies",
	"bundledDependencies",
	"bundleDependencies",
	"optionalDependencies",
}

// NPMParser reads package.json, package-lock.json and npm-shrinkwrap.json.
//
// Scoped names (@scope/name) are skipped: the scope owner controls them.
// Lockfile entries record where each package was downloaded from; entries
// resolved from an internal host are marked internal, others carry their
// resolved URL and are answered without a registry call.
type NPMParser struct{}

// Parse implements deps.Parser.
func (NPMParser) Parse(filename string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	opts = opts.WithDefaults()

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse %s", filename)
	}
	if strings.EqualFold(filename, "package.json") {
		return manifestDeps(doc, opts), nil
	}
	return lockDeps(doc, opts), nil
}

// manifestDeps reads the dependency fields of a package.json or bower.json
// document.
func manifestDeps(doc map[string]json.RawMessage, opts deps.ParseOptions) []deps.Dependency {
	var out []deps.Dependency
	for _, field := range dependencyFields {
		raw, ok := doc[field]
		if !ok {
			continue
		}
		var specs map[string]string
		if json.Unmarshal(raw, &specs) != nil {
			var list []string
			if json.Unmarshal(raw, &list) != nil {
				continue
			}
			specs = make(map[string]string, len(list))
			for _, n := range list {
				specs[n] = ""
			}
		}
		for _, name := range sortedKeys(specs) {
			if name == "" || strings.HasPrefix(name, "@") {
				continue
			}
			out = append(out, fromSpec(name, specs[name], opts))
		}
	}
	return out
}

// fromSpec builds a dependency from a version specifier. Specifiers that
// name a source (URLs, git remotes, local paths, GitHub shorthands) are not
// resolved through the registry.
func fromSpec(name, spec string, opts deps.ParseOptions) deps.Dependency {
	dep := deps.Dependency{Name: name, Version: strings.ReplaceAll(strings.TrimSpace(spec), "^", "")}
	if dep.Version == "" {
		dep.Version = deps.UnknownVersion
	}
	if src, ok := sourceSpec(spec); ok {
		dep.Resolved = src
		dep.Internal = opts.IsInternalURL(src)
	}
	return dep
}

var githubShorthandRe = regexp.MustCompile(`^[\w.-]+/[\w.-]+(#.*)?$`)

func sourceSpec(spec string) (string, bool) {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == "":
		return "", false
	case strings.HasPrefix(spec, "file:"), strings.HasPrefix(spec, "link:"),
		strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"), strings.HasPrefix(spec, "/"):
		return spec, true
	case strings.HasPrefix(spec, "github:"), strings.HasPrefix(spec, "gitlab:"), strings.HasPrefix(spec, "bitbucket:"):
		return spec, true
	case deps.LooksLikeURL(spec), strings.HasPrefix(spec, "git+"):
		return spec, true
	case githubShorthandRe.MatchString(spec):
		return "https://github.com/" + spec, true
	}
	return "", false
}

type lockEntry struct {
	Version  string `json:"version"`
	Resolved string `json:"resolved"`
	Link     bool   `json:"link"`
}

// lockDeps reads lockfile v1 dependency maps and the v2/v3 packages map.
func lockDeps(doc map[string]json.RawMessage, opts deps.ParseOptions) []deps.Dependency {
	seen := make(map[string]bool)
	var out []deps.Dependency
	add := func(name string, e lockEntry) {
		if name == "" || strings.HasPrefix(name, "@") || e.Link {
			return
		}
		key := name + "@" + e.Version
		if seen[key] {
			return
		}
		seen[key] = true
		dep := deps.Dependency{Name: name, Version: e.Version, Resolved: e.Resolved}
		if dep.Version == "" {
			dep.Version = deps.UnknownVersion
		}
		if e.Resolved != "" {
			dep.Internal = opts.IsInternalURL(e.Resolved)
		}
		out = append(out, dep)
	}

	for _, field := range dependencyFields {
		raw, ok := doc[field]
		if !ok {
			continue
		}
		var entries map[string]lockEntry
		if json.Unmarshal(raw, &entries) != nil {
			continue
		}
		for _, name := range sortedKeys(entries) {
			add(name, entries[name])
		}
	}

	if raw, ok := doc["packages"]; ok {
		var entries map[string]lockEntry
		if json.Unmarshal(raw, &entries) == nil {
			for _, path := range sortedKeys(entries) {
				i := strings.LastIndex(path, "node_modules/")
				if i < 0 {
					continue
				}
				add(path[i+len("node_modules/"):], entries[path])
			}
		}
	}
	return out
}

// NPMRCParser reads .npmrc files.
type NPMRCParser struct{}

var registryLineRe = regexp.MustCompile(`^\s*registry\s*=\s*(.*?)\s*$`)

// AllSourcesInternal reports whether the file sets a default registry and
// every registry= line points at an internal host.
func (NPMRCParser) AllSourcesInternal(_ string, content []byte, opts deps.ParseOptions) (bool, error) {
	opts = opts.WithDefaults()
	var registries []string
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		if m := registryLineRe.FindStringSubmatch(sc.Text()); m != nil {
			registries = append(registries, strings.Trim(m[1], `"'`))
		}
	}
	return opts.AllInternal(registries), sc.Err()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
