package javascript

import (
	"bufio"
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
)

// YarnParser reads yarn.lock files, both the classic line format and the
// YAML format written by Yarn 2 and later.
type YarnParser struct{}

// Parse implements deps.Parser.
func (YarnParser) Parse(filename string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	opts = opts.WithDefaults()
	if bytes.Contains(content, []byte("__metadata:")) {
		return parseBerryLock(filename, content, opts)
	}
	return parseClassicLock(content, opts), nil
}

// parseClassicLock reads stanzas of the form
//
//	"name@^1.0.0", name@^1.1.0:
//	  version "1.1.2"
//	  resolved "https://registry.yarnpkg.com/name/-/name-1.1.2.tgz#sha"
func parseClassicLock(content []byte, opts deps.ParseOptions) []deps.Dependency {
	var out []deps.Dependency
	var cur *deps.Dependency
	flush := func() {
		if cur != nil && cur.Name != "" && !strings.HasPrefix(cur.Name, "@") {
			if cur.Version == "" {
				cur.Version = deps.UnknownVersion
			}
			out = append(out, *cur)
		}
		cur = nil
	}

	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			flush()
			if strings.HasSuffix(trimmed, ":") {
				cur = &deps.Dependency{Name: yarnName(strings.TrimSuffix(trimmed, ":"))}
			}
			continue
		}
		if cur == nil {
			continue
		}
		key, value, ok := strings.Cut(trimmed, " ")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		switch key {
		case "version":
			cur.Version = value
		case "resolved":
			cur.Resolved = value
			cur.Internal = opts.IsInternalURL(value)
		}
	}
	flush()
	return out
}

// yarnName extracts the package name from a stanza header such as
// `"lodash@^4.17.0", lodash@^4.17.21`.
func yarnName(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first = strings.Trim(strings.TrimSpace(first), `"`)
	if i := strings.LastIndex(first, "@"); i > 0 {
		first = first[:i]
	}
	return strings.TrimSpace(first)
}

type berryEntry struct {
	Version    string `yaml:"version"`
	Resolution string `yaml:"resolution"`
}

// parseBerryLock reads the YAML lockfile of Yarn 2+. Entries resolved
// through the npm protocol are answered by the registry; workspace, patch,
// link and portal entries are local and skipped.
func parseBerryLock(filename string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse %s", filename)
	}
	var out []deps.Dependency
	for _, key := range sortedKeys(doc) {
		if key == "__metadata" {
			continue
		}
		node := doc[key]
		var e berryEntry
		if node.Decode(&e) != nil {
			continue
		}
		name := yarnName(key)
		name = strings.TrimSuffix(name, "@npm")
		if name == "" || strings.HasPrefix(name, "@") {
			continue
		}
		_, protocol, _ := strings.Cut(e.Resolution, "@")
		switch {
		case strings.HasPrefix(protocol, "npm:"):
		case strings.HasPrefix(protocol, "workspace:"), strings.HasPrefix(protocol, "patch:"),
			strings.HasPrefix(protocol, "link:"), strings.HasPrefix(protocol, "portal:"),
			strings.HasPrefix(protocol, "file:"):
			continue
		default:
			out = append(out, deps.Dependency{
				Name:     name,
				Version:  e.Version,
				Resolved: protocol,
				Internal: opts.IsInternalURL(protocol),
			})
			continue
		}
		version := e.Version
		if version == "" {
			version = deps.UnknownVersion
		}
		out = append(out, deps.Dependency{Name: name, Version: version})
	}
	return out, nil
}
