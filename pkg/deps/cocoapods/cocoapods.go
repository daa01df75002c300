// Package cocoapods recognizes CocoaPods projects and looks pod names up
// in the CocoaPods search index.
package cocoapods

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations/cocoapods"
)

// NewChecker returns a checker backed by the CocoaPods search index.
func NewChecker(client *cocoapods.Client) deps.Checker {
	return deps.NewRegistryChecker("cocoapods", func(ctx context.Context, dep deps.Dependency) (string, error) {
		p, err := client.FetchPod(ctx, dep.Name, false)
		if err != nil {
			return "", err
		}
		return p.Version, nil
	})
}

// CocoaPods returns the CocoaPods ecosystem.
func CocoaPods(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "cocoapods",
		ManifestFiles: []string{"Podfile"},
		LockFiles:     []string{"Podfile.lock"},
		Parser:        PodParser{},
		Checker:       checker,
	}
}

// PodParser reads Podfile and Podfile.lock. Subspecs ("Firebase/Core")
// are reported under their root pod.
type PodParser struct{}

// Parse implements deps.Parser.
func (PodParser) Parse(filename string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	opts = opts.WithDefaults()
	if strings.EqualFold(filename, "Podfile.lock") {
		return parseLock(content, opts)
	}
	return parsePodfile(content, opts), nil
}

var (
	sourceRe  = regexp.MustCompile(`^source\s+['"]([^'"]+)['"]`)
	podRe     = regexp.MustCompile(`^\s*pod\s+['"]([^'"]+)['"]\s*(?:,\s*['"]([^'"]+)['"])?`)
	podOptRe  = regexp.MustCompile(`:(?:git|path|podspec|http)\s*=>\s*['"]([^'"]+)['"]|\b(?:git|path|podspec|http):\s*['"]([^'"]+)['"]`)
	versionRe = regexp.MustCompile(`^(?:~>|>=|<=|=|>|<)\s*`)
	fromRe    = regexp.MustCompile("\\(from `([^`]+)`")
)

func parsePodfile(content []byte, opts deps.ParseOptions) []deps.Dependency {
	var sources []string
	var out []deps.Dependency
	seen := make(map[string]bool)

	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if m := sourceRe.FindStringSubmatch(line); m != nil {
			sources = append(sources, m[1])
			continue
		}
		m := podRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := rootPod(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true

		dep := deps.Dependency{Name: name, Version: deps.UnknownVersion}
		if m[2] != "" {
			dep.Version = versionRe.ReplaceAllString(m[2], "")
		}
		if o := podOptRe.FindStringSubmatch(line); o != nil {
			src := o[1] + o[2]
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

type podLock struct {
	Dependencies []string `yaml:"DEPENDENCIES"`
}

// parseLock reads the DEPENDENCIES list of a Podfile.lock, e.g.
//
//   - Alamofire (~> 5.0)
//   - AcmeKit (from `https://git.internal.acme.com/ios/AcmeKit.git`, branch `main`)
func parseLock(content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	var lock podLock
	if err := yaml.Unmarshal(content, &lock); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse Podfile.lock")
	}

	var out []deps.Dependency
	seen := make(map[string]bool)
	for _, entry := range lock.Dependencies {
		name, rest, _ := strings.Cut(strings.TrimSpace(entry), " ")
		name = rootPod(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		dep := deps.Dependency{Name: name, Version: deps.UnknownVersion}
		rest = strings.TrimSpace(rest)
		if m := fromRe.FindStringSubmatch(rest); m != nil {
			dep.Resolved = m[1]
			dep.Internal = opts.IsInternalURL(m[1])
		} else if v := strings.Trim(rest, "()"); v != "" {
			dep.Version = versionRe.ReplaceAllString(v, "")
		}
		out = append(out, dep)
	}
	return out, nil
}

func rootPod(name string) string {
	root, _, _ := strings.Cut(strings.TrimSpace(name), "/")
	return root
}
