package java

import (
	"bytes"
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
)

// POMParser reads Maven pom.xml files.
//
// Dependencies and plugins are returned when their groupId is missing or
// their version is missing, a range or a snapshot. A POM whose declared
// repositories are all internal yields nothing.
type POMParser struct{}

// Parse implements deps.Parser.
func (POMParser) Parse(_ string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	opts = opts.WithDefaults()

	var root pomNode
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.Strict = false
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	if err := dec.Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse pom.xml")
	}

	props := root.properties()

	var repos []string
	root.walk(func(n *pomNode) {
		if n.XMLName.Local == "repository" || n.XMLName.Local == "pluginRepository" {
			if u := n.child("url"); u != "" {
				repos = append(repos, interpolate(u, props))
			}
		}
	})
	if opts.AllInternal(repos) {
		return nil, nil
	}

	var out []deps.Dependency
	root.walk(func(n *pomNode) {
		if n.XMLName.Local != "dependency" && n.XMLName.Local != "plugin" {
			return
		}
		name := interpolate(n.child("artifactId"), props)
		if name == "" {
			return
		}
		group := interpolate(n.child("groupId"), props)
		version := interpolate(n.child("version"), props)
		if group != "" && version != "" && !IsUnpinned(version) {
			return
		}
		if version == "" {
			version = deps.UnknownVersion
		}
		out = append(out, deps.Dependency{Name: name, Group: group, Version: version})
	})
	return out, nil
}

// pomNode is a generic element tree; POM layouts vary too much for a
// fixed schema.
type pomNode struct {
	XMLName xml.Name
	Text    string    `xml:",chardata"`
	Nodes   []pomNode `xml:",any"`
}

func (n *pomNode) walk(fn func(*pomNode)) {
	fn(n)
	for i := range n.Nodes {
		n.Nodes[i].walk(fn)
	}
}

// child returns the trimmed text of the first direct child named local.
func (n *pomNode) child(local string) string {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			return strings.TrimSpace(n.Nodes[i].Text)
		}
	}
	return ""
}

// properties collects the project's <properties> plus the project
// coordinates under their ${project.*} names.
func (n *pomNode) properties() map[string]string {
	props := make(map[string]string)
	for _, key := range []string{"groupId", "artifactId", "version"} {
		if v := n.child(key); v != "" {
			props["project."+key] = v
		}
	}
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local != "properties" {
			continue
		}
		for _, p := range n.Nodes[i].Nodes {
			props[p.XMLName.Local] = strings.TrimSpace(p.Text)
		}
	}
	return props
}

var propertyRe = regexp.MustCompile(`\$\{([^}]+)\}`)

func interpolate(s string, props map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return propertyRe.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := props[m[2:len(m)-1]]; ok {
			return v
		}
		return m
	})
}
