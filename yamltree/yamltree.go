// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package yamltree builds template trees, data models and settings from
// YAML documents.
//
// A document is a mapping with the optional keys "name", "settings", "data"
// and "tree":
//
//	name: hello.ftl
//	settings:
//	  output_format: HTML
//	data:
//	  user: {name: Ann}
//	tree:
//	  - "Hello "
//	  - interpolation: {ident: user.name}
//	  - "!"
//
// A document that is a sequence is only the tree.
//
// The tree is a sequence of elements. A scalar element is a static text,
// a mapping element is a directive whose kind is the first key of the
// mapping, as "if", "list" or "assign". The YAML scalars are literal
// expressions, the sequences are list literals and a mapping is an
// expression whose kind is its first key, as "ident", "add" or "builtin".
package yamltree

import (
	"fmt"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
	"github.com/open2b/ftl/renderer"

	"gopkg.in/yaml.v3"
)

// Document is a parsed YAML document.
type Document struct {
	Name     string             // name of the template
	Settings *renderer.Settings // settings; the default settings if not present
	Data     model.Hash         // data model; nil if not present
	Template *ast.Template      // template
}

// Error is an error in a YAML document.
type Error struct {
	Line   int    // line of the YAML node
	Column int    // column of the YAML node
	Msg    string // message
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Parse parses a YAML document. name is the name of the template if the
// document does not have one. The returned template has already been
// cleaned up, stripping the white space if the settings require it.
func Parse(name string, src []byte) (doc *Document, err error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	doc = &Document{Name: name, Settings: renderer.DefaultSettings()}
	n := document(&root)
	var tree *yaml.Node
	switch n.Kind {
	case 0:
	case yaml.SequenceNode:
		tree = n
	case yaml.MappingNode:
		m := newMapping(n)
		m.check("name", "settings", "data", "tree")
		if v := m.get("name"); v != nil {
			doc.Name = scalar(v)
		}
		if v := m.get("settings"); v != nil {
			if err := v.Decode(doc.Settings); err != nil {
				fail(v, "invalid settings: %s", err)
			}
		}
		if v := m.get("data"); v != nil {
			doc.Data = data(v)
		}
		tree = m.get("tree")
	default:
		fail(n, "expecting a mapping or a sequence")
	}
	var elements []ast.Element
	if tree != nil {
		elements = body(tree)
	}
	doc.Template = ast.NewTemplate(doc.Name, ast.NewBlock(nil, elements...))
	doc.Template.Cleanup(doc.Settings.StripWhitespace)
	return doc, nil
}

// ParseData parses a YAML document that is a data model. An empty document
// is an empty data model.
func ParseData(src []byte) (h model.Hash, err error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	n := document(&root)
	if n.Kind == 0 {
		return model.EmptyHash, nil
	}
	return data(n), nil
}

// ParseSettings parses a YAML document with the settings. The settings not
// present in the document have the default value.
func ParseSettings(src []byte) (*renderer.Settings, error) {
	settings := renderer.DefaultSettings()
	if err := yaml.Unmarshal(src, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// document returns the content of the document node n.
func document(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return &yaml.Node{}
		}
		return n.Content[0]
	}
	return n
}

// data returns the data model represented by the mapping node n.
func data(n *yaml.Node) model.Hash {
	if n.Kind != yaml.MappingNode {
		fail(n, "the data model must be a mapping")
	}
	var m map[string]interface{}
	if err := n.Decode(&m); err != nil {
		fail(n, "invalid data model: %s", err)
	}
	v, err := model.Wrap(m)
	if err != nil {
		fail(n, "invalid data model: %s", err)
	}
	if v == nil {
		return model.EmptyHash
	}
	return v.(model.Hash)
}

// fail panics with an *Error at the position of n.
func fail(n *yaml.Node, format string, a ...interface{}) {
	panic(&Error{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, a...)})
}

// pos returns the position of n.
func pos(n *yaml.Node) *ast.Position {
	return &ast.Position{Line: n.Line, Column: n.Column, EndLine: n.Line, EndColumn: n.Column}
}

// scalar returns the value of the scalar node n.
func scalar(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode {
		fail(n, "expecting a scalar")
	}
	return n.Value
}

// names returns the names in n, that is a scalar or a sequence of scalars.
func names(n *yaml.Node) []string {
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}
	}
	if n.Kind != yaml.SequenceNode {
		fail(n, "expecting a name or a sequence of names")
	}
	s := make([]string, len(n.Content))
	for i, c := range n.Content {
		s[i] = scalar(c)
	}
	return s
}

// isNull reports whether n is nil or the null value.
func isNull(n *yaml.Node) bool {
	return n == nil || n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// mapping is a mapping node with its keys.
type mapping struct {
	node  *yaml.Node
	kind  string
	keys  []string
	nodes map[string]*yaml.Node
}

// newMapping returns the mapping of the mapping node n. The kind of the
// mapping is its first key.
func newMapping(n *yaml.Node) mapping {
	m := mapping{node: n, nodes: map[string]*yaml.Node{}}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := scalar(n.Content[i])
		m.keys = append(m.keys, key)
		m.nodes[key] = n.Content[i+1]
	}
	if len(m.keys) == 0 {
		fail(n, "unexpected empty mapping")
	}
	m.kind = m.keys[0]
	return m
}

// get returns the value of key, or nil if key is not present.
func (m mapping) get(key string) *yaml.Node {
	return m.nodes[key]
}

// must returns the value of key, failing if it is not present.
func (m mapping) must(key string) *yaml.Node {
	n, ok := m.nodes[key]
	if !ok {
		fail(m.node, "%s: missing %q", m.kind, key)
	}
	return n
}

// check fails if m has a key that is not in allowed.
func (m mapping) check(allowed ...string) {
KEYS:
	for _, key := range m.keys {
		for _, a := range allowed {
			if key == a {
				continue KEYS
			}
		}
		fail(m.node, "%s: unexpected key %q", m.kind, key)
	}
}

// body returns the elements of the sequence node n. A null node is an empty
// body.
func body(n *yaml.Node) []ast.Element {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		fail(n, "expecting a sequence of elements")
	}
	elements := make([]ast.Element, len(n.Content))
	for i, c := range n.Content {
		elements[i] = element(c)
	}
	return elements
}
