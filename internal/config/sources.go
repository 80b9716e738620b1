package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SourceKind says which layer a configuration value came from.
type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceBuiltin SourceKind = "builtin"
	SourceFile    SourceKind = "file"
)

// Source locates a configuration value. Name is set for builtin and
// default values; File, Line and Column for file values.
type Source struct {
	Kind   SourceKind
	Name   string
	File   string
	Line   int
	Column int
}

func (s Source) position() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

func fileSource(file string, n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
}

// rootMapping unwraps a document node to its top-level mapping.
func rootMapping(doc *yaml.Node) *yaml.Node {
	if doc == nil {
		return nil
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	return doc
}

// nodeSources records the position of every mapping key's value, keyed by
// dotted path. Sequences are recorded as a whole.
func nodeSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	var walk func(n *yaml.Node, prefix string)
	walk = func(n *yaml.Node, prefix string) {
		if n.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			path := n.Content[i].Value
			if prefix != "" {
				path = prefix + "." + path
			}
			val := n.Content[i+1]
			out[path] = fileSource(file, val)
			walk(val, path)
		}
	}
	if root := rootMapping(doc); root != nil {
		walk(root, "")
	}
	return out
}

type includeRef struct {
	value string
	src   Source
}

// includeRefs returns the entries of the top-level include key, which may
// be a string or a list of strings.
func includeRefs(doc *yaml.Node, file string) []includeRef {
	root := rootMapping(doc)
	if root == nil {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		items := []*yaml.Node{val}
		if val.Kind == yaml.SequenceNode {
			items = val.Content
		}
		var refs []includeRef
		for _, item := range items {
			if item.Kind == yaml.ScalarNode {
				refs = append(refs, includeRef{value: item.Value, src: fileSource(file, item)})
			}
		}
		return refs
	}
	return nil
}

// withSource fills in the file position of a ValidationError's path.
func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}
