package javascript

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
)

// BowerParser reads bower.json files. Bower accepts the same specifier
// forms as npm, so git and URL sources are not looked up.
type BowerParser struct{}

// Parse implements deps.Parser.
func (BowerParser) Parse(filename string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse %s", filename)
	}
	return manifestDeps(doc, opts.WithDefaults()), nil
}

// GulpParser reads the modules a gulpfile.js loads with require().
// Relative and scoped modules are skipped.
type GulpParser struct{}

var requireRe = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)

// Parse implements deps.Parser.
func (GulpParser) Parse(_ string, content []byte, _ deps.ParseOptions) ([]deps.Dependency, error) {
	var out []deps.Dependency
	seen := make(map[string]bool)
	for _, m := range requireRe.FindAllSubmatch(content, -1) {
		name := string(m[1])
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "/") || strings.HasPrefix(name, "@") ||
			strings.HasPrefix(name, "node:") {
			continue
		}
		// require('lodash/fp') loads the lodash package.
		name, _, _ = strings.Cut(name, "/")
		if seen[name] || builtinModules[name] {
			continue
		}
		seen[name] = true
		out = append(out, deps.Dependency{Name: name, Version: deps.UnknownVersion})
	}
	return out, nil
}

// builtinModules are Node.js core modules, never fetched from a registry.
var builtinModules = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "crypto": true,
	"events": true, "fs": true, "http": true, "https": true, "net": true,
	"os": true, "path": true, "process": true, "stream": true, "url": true,
	"util": true, "zlib": true, "readline": true, "querystring": true,
}
