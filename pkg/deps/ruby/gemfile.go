package ruby

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/matzehuels/dazed/pkg/deps"
)

// GemParser reads Gemfile and Gemfile.lock.
type GemParser struct{}

// Parse implements deps.Parser.
func (GemParser) Parse(filename string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	opts = opts.WithDefaults()
	if strings.EqualFold(filename, "Gemfile.lock") {
		return parseLock(content, opts), nil
	}
	return parseGemfile(content, opts), nil
}

var (
	sourcePattern = regexp.MustCompile(`^\s*source\s*\(?\s*['"]([^'"]+)['"]`)
	gemPattern    = regexp.MustCompile(`^\s*gem\s*\(?\s*['"]([^'"]+)['"]\s*(?:,\s*['"]([^'"]+)['"])?`)
	gemSourceOpt  = regexp.MustCompile(`\b(?:git|github|path|source)\s*:\s*['"]([^'"]+)['"]|:(?:git|github|path|source)\s*=>\s*['"]([^'"]+)['"]`)
	qualifierRe   = regexp.MustCompile(`^(?:~>|>=|<=|!=|=|>|<)\s*`)
)

// parseGemfile returns every gem line. When all top-level sources are
// internal nothing is returned. Gems declared with their own git, path or
// source option carry that location.
func parseGemfile(content []byte, opts deps.ParseOptions) []deps.Dependency {
	var sources []string
	var out []deps.Dependency
	seen := make(map[string]bool)

	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if m := sourcePattern.FindStringSubmatch(line); m != nil && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			sources = append(sources, m[1])
			continue
		}
		m := gemPattern.FindStringSubmatch(line)
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true

		dep := deps.Dependency{Name: m[1], Version: deps.UnknownVersion}
		if m[2] != "" {
			dep.Version = qualifierRe.ReplaceAllString(m[2], "")
		}
		if s := gemSourceOpt.FindStringSubmatch(line); s != nil {
			src := s[1] + s[2]
			dep.Resolved = src
			dep.Internal = opts.IsInternalURL(src)
		}
		out = append(out, dep)
	}
	if opts.AllInternal(sources) {
		return nil
	}
	return out
}

// lockSections are the Gemfile.lock sections that list gems.
var lockSections = []string{"GIT", "GEM", "PATH", "PLUGIN SOURCE", "DEPENDENCIES"}

// parseLock reads the specs of every source section and the DEPENDENCIES
// list. Gems from a GIT or PATH section, or from a GEM section with an
// internal remote, carry that remote. A DEPENDENCIES entry adds nothing for
// a gem already listed under a source.
func parseLock(content []byte, opts deps.ParseOptions) []deps.Dependency {
	type entry struct {
		dep   deps.Dependency
		order int
	}
	found := make(map[string]*entry)
	var order []string
	put := func(d deps.Dependency, override bool) {
		if d.Name == "" {
			return
		}
		if e, ok := found[d.Name]; ok {
			if override {
				e.dep = d
			}
			return
		}
		found[d.Name] = &entry{dep: d, order: len(order)}
		order = append(order, d.Name)
	}

	var section, remote string
	inSpecs := false
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \r")
		if line == "" {
			section, remote, inSpecs = "", "", false
			continue
		}
		if line[0] != ' ' {
			section, remote, inSpecs = "", "", false
			for _, s := range lockSections {
				if line == s {
					section = s
				}
			}
			continue
		}
		if section == "" {
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " "))
		text := strings.TrimSpace(line)
		switch {
		case section == "DEPENDENCIES" && indent == 2:
			put(lockDep(text), false)
		case indent == 2 && strings.HasPrefix(text, "remote:"):
			remote = strings.TrimSpace(strings.TrimPrefix(text, "remote:"))
		case indent == 2 && text == "specs:":
			inSpecs = true
		case inSpecs && indent == 4:
			d := lockDep(text)
			switch {
			case section == "GIT" || section == "PATH":
				d.Resolved = remote
				d.Internal = opts.IsInternalURL(remote)
			case opts.IsInternalURL(remote):
				d.Resolved = remote
				d.Internal = true
			}
			put(d, true)
		}
	}

	out := make([]deps.Dependency, 0, len(order))
	for _, name := range order {
		out = append(out, found[name].dep)
	}
	return out
}

// lockDep parses "name (1.2.3)" or "name (~> 1.2, >= 1.2.1)".
func lockDep(text string) deps.Dependency {
	name, rest, _ := strings.Cut(text, " (")
	name = strings.TrimSuffix(strings.TrimSpace(name), "!")
	d := deps.Dependency{Name: name, Version: deps.UnknownVersion}
	if rest != "" {
		rest = strings.TrimSuffix(rest, ")")
		first, _, _ := strings.Cut(rest, ", ")
		if v := qualifierRe.ReplaceAllString(strings.TrimSpace(first), ""); v != "" {
			d.Version = v
		}
	}
	return d
}
