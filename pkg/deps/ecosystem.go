package deps

import (
	"path"
	"strings"

	"github.com/matzehuels/dazed/pkg/errors"
)

// FileKind classifies a file an ecosystem recognizes.
type FileKind int

const (
	KindManifest FileKind = iota + 1 // Declares dependencies
	KindLock                         // Records resolved dependencies
	KindConfig                       // Configures package sources
)

// String returns the lowercase name of k.
func (k FileKind) String() string {
	switch k {
	case KindManifest:
		return "manifest"
	case KindLock:
		return "lock"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Ecosystem defines the files, parser and registry checker of one package
// manager. Each ecosystem package (java, javascript, ...) exports
// constructors returning a configured *Ecosystem.
//
// LockFiles is ordered by precedence: the last entry is the canonical lock.
type Ecosystem struct {
	Name          string
	ManifestFiles []string
	LockFiles     []string
	ConfigFiles   []string
	Parser        Parser
	Config        ConfigParser // nil when ConfigFiles is empty
	Checker       Checker
}

// Kind returns the kind of the file with the given base name, or 0 if the
// ecosystem does not recognize it. Matching is case-insensitive.
func (e *Ecosystem) Kind(base string) FileKind {
	switch {
	case containsFold(e.ManifestFiles, base):
		return KindManifest
	case containsFold(e.LockFiles, base):
		return KindLock
	case containsFold(e.ConfigFiles, base):
		return KindConfig
	}
	return 0
}

// overriddenBy returns the base names neutralized when base is present in
// the same directory. A lockfile overrides every manifest and every
// non-canonical lock other than itself; a config overrides all manifests
// and locks.
func (e *Ecosystem) overriddenBy(base string, kind FileKind) []string {
	switch kind {
	case KindLock:
		out := append([]string(nil), e.ManifestFiles...)
		if n := len(e.LockFiles); n > 1 {
			for _, l := range e.LockFiles[:n-1] {
				if !strings.EqualFold(l, base) {
					out = append(out, l)
				}
			}
		}
		return out
	case KindConfig:
		out := append([]string(nil), e.ManifestFiles...)
		return append(out, e.LockFiles...)
	}
	return nil
}

func (e *Ecosystem) validate() error {
	if e.Name == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "ecosystem without a name")
	}
	if len(e.ManifestFiles)+len(e.LockFiles) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "ecosystem %s declares no manifest or lock files", e.Name)
	}
	if e.Parser == nil || e.Checker == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "ecosystem %s needs a parser and a checker", e.Name)
	}
	if len(e.ConfigFiles) > 0 && e.Config == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "ecosystem %s declares config files without a config parser", e.Name)
	}
	return nil
}

// Table is the ordered set of supported ecosystems. It is immutable after
// construction and safe for concurrent use.
type Table struct {
	ecosystems []*Ecosystem
	byFile     map[string]*Ecosystem
}

// NewTable builds a table from ecosystems in priority order. It fails if an
// ecosystem is incomplete or if two ecosystems claim the same file name.
func NewTable(ecosystems ...*Ecosystem) (*Table, error) {
	t := &Table{byFile: make(map[string]*Ecosystem)}
	for _, e := range ecosystems {
		if e == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "nil ecosystem")
		}
		if err := e.validate(); err != nil {
			return nil, err
		}
		for _, names := range [][]string{e.ManifestFiles, e.LockFiles, e.ConfigFiles} {
			for _, n := range names {
				key := strings.ToLower(n)
				if prev, ok := t.byFile[key]; ok {
					return nil, errors.New(errors.ErrCodeInvalidConfig,
						"file %s claimed by both %s and %s", n, prev.Name, e.Name)
				}
				t.byFile[key] = e
			}
		}
		t.ecosystems = append(t.ecosystems, e)
	}
	return t, nil
}

// Ecosystems returns the table entries in priority order.
func (t *Table) Ecosystems() []*Ecosystem {
	return append([]*Ecosystem(nil), t.ecosystems...)
}

// Lookup returns the ecosystem registered under name.
func (t *Table) Lookup(name string) (*Ecosystem, bool) {
	for _, e := range t.ecosystems {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return nil, false
}

// Match returns the ecosystem and kind for a repository path, using only
// its base name.
func (t *Table) Match(p string) (*Ecosystem, FileKind, bool) {
	base := path.Base(p)
	e, ok := t.byFile[strings.ToLower(base)]
	if !ok {
		return nil, 0, false
	}
	return e, e.Kind(base), true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
