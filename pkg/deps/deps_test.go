package deps

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// fakeChecker answers from a fixed set of public names.
type fakeChecker struct {
	name   string
	public map[string]string
	fail   map[string]error
	delay  time.Duration

	calls atomic.Int32
	mu    sync.Mutex
	seen  []string
}

func (c *fakeChecker) Name() string {
	if c.name == "" {
		return "fake"
	}
	return c.name
}

func (c *fakeChecker) Lookup(ctx context.Context, dep Dependency) (PublicVersion, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.seen = append(c.seen, dep.Name)
	c.mu.Unlock()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if err := c.fail[dep.Name]; err != nil {
		return PublicVersion{}, err
	}
	if v, ok := c.public[dep.Name]; ok {
		return PublicVersion{Version: v, Found: true}, nil
	}
	return PublicVersion{Version: NotFoundVersion}, nil
}

func nopParser() Parser {
	return ParserFunc(func(string, []byte, ParseOptions) ([]Dependency, error) { return nil, nil })
}

func testTable(t interface{ Fatal(...any) }) *Table {
	cfg := ConfigParserFunc(func(_ string, content []byte, opts ParseOptions) (bool, error) {
		return opts.IsInternalURL(string(content)), nil
	})
	tbl, err := NewTable(
		&Ecosystem{
			Name:          "npm",
			ManifestFiles: []string{"package.json"},
			LockFiles:     []string{"package-lock.json", "npm-shrinkwrap.json"},
			ConfigFiles:   []string{".npmrc"},
			Parser:        nopParser(),
			Config:        cfg,
			Checker:       &fakeChecker{name: "npm"},
		},
		&Ecosystem{
			Name:      "yarn",
			LockFiles: []string{"yarn.lock"},
			Parser:    nopParser(),
			Checker:   &fakeChecker{name: "yarn"},
		},
		&Ecosystem{
			Name:          "pip",
			ManifestFiles: []string{"requirements.txt", "Pipfile"},
			LockFiles:     []string{"Pipfile.lock"},
			Parser:        nopParser(),
			Checker:       &fakeChecker{name: "pypi"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}
