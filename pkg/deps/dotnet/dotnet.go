// Package dotnet inspects NuGet configuration.
//
// NuGet resolves packages from every source listed in nuget.config unless
// the list starts with <clear/>. A configuration is safe only when it clears
// the inherited sources and then adds internal feeds exclusively; any other
// configuration is itself reported as the vulnerable finding.
package dotnet

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations"
)

// VulnerableConfig is the name reported for an unsafe nuget.config.
const VulnerableConfig = "THIS NUGET CONFIGURATION IS VULNERABLE"

// NewChecker returns a checker that reports every name as absent. The only
// name the nuget parser emits is VulnerableConfig.
func NewChecker() deps.Checker {
	return deps.NewRegistryChecker("nuget", func(context.Context, deps.Dependency) (string, error) {
		return "", integrations.ErrNotFound
	})
}

// Nuget returns the nuget ecosystem.
func Nuget(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "nuget",
		ManifestFiles: []string{"nuget.config"},
		Parser:        NugetParser{},
		Checker:       checker,
	}
}

// NugetParser reads the packageSources section of nuget.config.
type NugetParser struct{}

type nugetConfig struct {
	Sources struct {
		Entries []sourceEntry `xml:",any"`
	} `xml:"packageSources"`
}

type sourceEntry struct {
	XMLName xml.Name
	Key     string `xml:"key,attr"`
	Value   string `xml:"value,attr"`
}

// Parse implements deps.Parser.
func (NugetParser) Parse(_ string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	opts = opts.WithDefaults()

	var cfg nugetConfig
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.Strict = false
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse nuget.config")
	}

	cleared := false
	var sources []string
	for _, e := range cfg.Sources.Entries {
		switch e.XMLName.Local {
		case "clear":
			cleared = true
			sources = sources[:0]
		case "add":
			sources = append(sources, e.Value)
		case "remove":
			sources = remove(sources, cfg.Sources.Entries, e.Key)
		}
	}
	if cleared && opts.AllInternal(sources) {
		return nil, nil
	}
	return []deps.Dependency{{Name: VulnerableConfig, Version: deps.UnknownVersion}}, nil
}

// remove drops the value previously added under key.
func remove(sources []string, entries []sourceEntry, key string) []string {
	var value string
	for _, e := range entries {
		if e.XMLName.Local == "add" && e.Key == key {
			value = e.Value
		}
	}
	out := sources[:0]
	for _, s := range sources {
		if s != value {
			out = append(out, s)
		}
	}
	return out
}
