package java

import (
	"bufio"
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/dazed/pkg/deps"
)

// GradleParser reads Groovy build scripts (build.gradle) and Gradle
// dependency lockfiles.
//
// Build scripts have no grammar the parser relies on: structure is taken
// from lines ending in "{" and from indentation. From that block tree it
// extracts the declared repository URLs and the dependency coordinates.
// Only unpinned coordinates (ranges, dynamic or snapshot versions, or no
// version) are returned, and nothing is returned when every declared
// repository is internal.
type GradleParser struct{}

// Parse implements deps.Parser.
func (GradleParser) Parse(filename string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	opts = opts.WithDefaults()
	if strings.EqualFold(filename, "gradle.lockfile") {
		return parseGradleLock(content), nil
	}

	script := parseGradleScript(string(content))
	if repos := script.repositories(); opts.AllInternal(repos) {
		return nil, nil
	}
	return script.dependencies(), nil
}

// gradleBlock is a named "{ ... }" section and its body in order.
type gradleBlock struct {
	name  string
	items []gradleItem
}

// gradleItem is either a single statement line or a nested block.
type gradleItem struct {
	line  string
	block *gradleBlock
}

type gradleScript struct {
	root gradleBlock
	defs map[string]string
}

func parseGradleScript(src string) *gradleScript {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	s := &gradleScript{defs: collectDefs(lines)}
	p := &blockReader{lines: lines}
	for !p.done() {
		if isBlockHeader(p.peek()) {
			s.root.items = append(s.root.items, gradleItem{block: p.block()})
			continue
		}
		p.next()
	}
	return s
}

// blockReader consumes lines into a block tree.
type blockReader struct {
	lines []string
	pos   int
}

func (r *blockReader) done() bool   { return r.pos >= len(r.lines) }
func (r *blockReader) peek() string { return r.lines[r.pos] }
func (r *blockReader) next() string { r.pos++; return r.lines[r.pos-1] }

// block reads a header line and every following line at the body's
// indentation (or deeper), then the closing brace. A body that is not
// indented past its header runs up to the first closing brace instead.
func (r *blockReader) block() *gradleBlock {
	header := r.next()
	b := &gradleBlock{name: blockName(header)}
	if r.done() {
		return b
	}

	outer := indentOf(header)
	body := indentOf(r.peek())
	if body <= outer {
		r.flatBody(b)
		return b
	}

	for !r.done() && indentOf(r.peek()) >= body {
		line := r.peek()
		if indentOf(line) == body && isBlockHeader(line) {
			b.items = append(b.items, gradleItem{block: r.block()})
			continue
		}
		r.next()
		stmt := strings.TrimSpace(line)
		if stmt == "}" || strings.HasPrefix(stmt, "//") {
			continue
		}
		b.items = append(b.items, gradleItem{line: stmt})
	}
	if !r.done() && strings.HasPrefix(strings.TrimSpace(r.peek()), "}") && indentOf(r.peek()) < body {
		r.next()
	}
	return b
}

// flatBody reads statements into b until the line closing it.
func (r *blockReader) flatBody(b *gradleBlock) {
	for !r.done() {
		line := r.peek()
		stmt := strings.TrimSpace(line)
		if strings.HasPrefix(stmt, "}") {
			r.next()
			return
		}
		if isBlockHeader(line) {
			b.items = append(b.items, gradleItem{block: r.block()})
			continue
		}
		r.next()
		if !strings.HasPrefix(stmt, "//") {
			b.items = append(b.items, gradleItem{line: stmt})
		}
	}
}

var blockHeaderRe = regexp.MustCompile(`\{\s*$`)

func isBlockHeader(line string) bool {
	return blockHeaderRe.MatchString(line)
}

func blockName(header string) string {
	name := strings.TrimSpace(blockHeaderRe.ReplaceAllString(header, ""))
	return strings.TrimSuffix(strings.TrimSpace(strings.TrimSuffix(name, "()")), "(")
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// walk calls fn for every block in the tree, depth first.
func (b *gradleBlock) walk(fn func(*gradleBlock)) {
	fn(b)
	for _, it := range b.items {
		if it.block != nil {
			it.block.walk(fn)
		}
	}
}

// lines returns every statement inside b, including those in nested blocks.
func (b *gradleBlock) lines() []string {
	var out []string
	for _, it := range b.items {
		if it.block != nil {
			out = append(out, it.block.name)
			out = append(out, it.block.lines()...)
			continue
		}
		out = append(out, it.line)
	}
	return out
}

var (
	repoURLRe = regexp.MustCompile(`['"]((?:https?://|/)[^'"]*)['"]`)

	// Shorthands for public repositories.
	publicRepos = map[string]string{
		"mavenCentral":       "https://repo.maven.apache.org/maven2/",
		"jcenter":            "https://jcenter.bintray.com/",
		"google":             "https://dl.google.com/dl/android/maven2/",
		"gradlePluginPortal": "https://plugins.gradle.org/m2/",
	}
	repoCallRe = regexp.MustCompile(`^(\w+)\s*\(`)
)

// repositories returns the distinct source URLs declared in any
// repositories block.
func (s *gradleScript) repositories() []string {
	seen := make(map[string]bool)
	s.root.walk(func(b *gradleBlock) {
		if b.name != "repositories" {
			return
		}
		for _, line := range b.lines() {
			line = s.substitute(line)
			if m := repoURLRe.FindStringSubmatch(line); m != nil {
				seen[m[1]] = true
				continue
			}
			if m := repoCallRe.FindStringSubmatch(line); m != nil {
				if u, ok := publicRepos[m[1]]; ok {
					seen[u] = true
				}
			}
		}
	})
	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Configuration names stripped from the front of a dependency statement.
var configurations = []string{
	"classpath", "testCompile", "compile", "implementation", "testImplementation",
	"extraLibs", "runtime", "api", "compileOnly", "runtimeOnly", "testCompileOnly",
	"testRuntimeOnly", "annotationProcessor", "kapt", "androidTestImplementation",
	"debugImplementation", "releaseImplementation",
}

var (
	configPrefixRe = regexp.MustCompile(`^(?:` + strings.Join(configurations, "|") + `)\b\s*\(?\s*`)
	quotedRe       = regexp.MustCompile(`^['"]([^'"]+)['"]`)
	keyedNameRe    = regexp.MustCompile(`\bname\s*:\s*['"]([^'"]*)['"]`)
	keyedGroupRe   = regexp.MustCompile(`\bgroup\s*:\s*['"]([^'"]*)['"]`)
	keyedVersionRe = regexp.MustCompile(`\bversion\s*:\s*['"]([^'"]*)['"]`)
	lineCommentRe  = regexp.MustCompile(`\s//.*$`)
	stringJoinRe   = regexp.MustCompile(`['"]\s*\+\s*['"]`)
)

// dependencies returns the unpinned coordinates declared in every
// dependencies block.
func (s *gradleScript) dependencies() []deps.Dependency {
	var out []deps.Dependency
	s.root.walk(func(b *gradleBlock) {
		if b.name != "dependencies" {
			return
		}
		for _, it := range b.items {
			stmt := it.line
			if it.block != nil {
				// "implementation('g:a:v') {" carries its coordinate in the header.
				stmt = it.block.name
			}
			if dep, ok := s.parseDependency(stmt); ok {
				out = append(out, dep)
			}
		}
	})
	return out
}

func (s *gradleScript) parseDependency(stmt string) (deps.Dependency, bool) {
	stmt = lineCommentRe.ReplaceAllString(stmt, "")
	stmt = strings.TrimSpace(configPrefixRe.ReplaceAllString(stmt, ""))
	stmt = stringJoinRe.ReplaceAllString(s.substitute(stmt), "")

	if keyedNameRe.MatchString(stmt) {
		return parseKeyed(stmt)
	}
	m := quotedRe.FindStringSubmatch(stmt)
	if m == nil {
		return deps.Dependency{}, false
	}
	parts := strings.Split(m[1], ":")
	switch {
	case len(parts) == 2:
		return deps.Dependency{Group: parts[0], Name: parts[1], Version: deps.UnknownVersion}, parts[1] != ""
	case len(parts) >= 3:
		version := parts[2]
		if i := strings.Index(version, "@"); i >= 0 {
			version = version[:i]
		}
		if version != "" && !IsUnpinned(version) {
			return deps.Dependency{}, false
		}
		if version == "" {
			version = deps.UnknownVersion
		}
		return deps.Dependency{Group: parts[0], Name: parts[1], Version: version}, parts[1] != ""
	}
	return deps.Dependency{}, false
}

func parseKeyed(stmt string) (deps.Dependency, bool) {
	dep := deps.Dependency{Version: deps.UnknownVersion}
	if m := keyedNameRe.FindStringSubmatch(stmt); m != nil {
		dep.Name = m[1]
	}
	if m := keyedGroupRe.FindStringSubmatch(stmt); m != nil {
		dep.Group = m[1]
	}
	if m := keyedVersionRe.FindStringSubmatch(stmt); m != nil && m[1] != "" {
		if dep.Group != "" && !IsUnpinned(m[1]) {
			return deps.Dependency{}, false
		}
		dep.Version = m[1]
	}
	return dep, dep.Name != ""
}

// IsUnpinned reports whether a Maven or Gradle version selects more than
// one release: ranges, dynamic versions and snapshots. Unresolved property
// references count as unpinned.
func IsUnpinned(version string) bool {
	if strings.ContainsAny(version, ",[]()+$") {
		return true
	}
	upper := strings.ToUpper(version)
	return strings.Contains(upper, "SNAPSHOT") || strings.HasPrefix(upper, "LATEST")
}

var (
	defRe    = regexp.MustCompile(`^def\s+(\w+)\s*=\s*(.+?);?$`)
	concatRe = regexp.MustCompile(`(\w+)\.concat\(\s*['"]([^'"]*)['"]\s*\)`)
)

// collectDefs reads "def NAME = 'value'" string variables. An elvis
// default ("x ?: 'y'") contributes its fallback value; list and map
// literals are ignored.
func collectDefs(lines []string) map[string]string {
	defs := make(map[string]string)
	for _, line := range lines {
		m := defRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		if i := strings.LastIndex(value, "?:"); i >= 0 {
			value = strings.TrimSpace(value[i+2:])
		}
		if len(value) < 2 {
			continue
		}
		q := value[0]
		if (q != '\'' && q != '"') || value[len(value)-1] != q {
			continue
		}
		defs[m[1]] = value[1 : len(value)-1]
	}
	return defs
}

// substitute expands $NAME, ${NAME} and NAME.concat('x') references.
func (s *gradleScript) substitute(text string) string {
	if len(s.defs) == 0 || (!strings.Contains(text, "$") && !strings.Contains(text, ".concat(")) {
		return text
	}
	text = concatRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := concatRe.FindStringSubmatch(m)
		v, ok := s.defs[sub[1]]
		if !ok {
			return m
		}
		return "'" + v + sub[2] + "'"
	})

	// Longest names first so $fooBar is not expanded as $foo + "Bar".
	names := make([]string, 0, len(s.defs))
	for n := range s.defs {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, n := range names {
		text = strings.ReplaceAll(text, "${"+n+"}", s.defs[n])
		text = strings.ReplaceAll(text, "$"+n, s.defs[n])
	}
	return text
}

// parseGradleLock reads "group:name:version=configurations" lines.
func parseGradleLock(content []byte) []deps.Dependency {
	var out []deps.Dependency
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		coord, _, _ := strings.Cut(line, "=")
		parts := strings.Split(coord, ":")
		if len(parts) != 3 || parts[1] == "" {
			continue
		}
		out = append(out, deps.Dependency{Group: parts[0], Name: parts[1], Version: parts[2]})
	}
	return out
}
