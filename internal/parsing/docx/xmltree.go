// Package docx implements the statistical DOCX structural extractor of
// spec §4.5. Office Open XML documents have no single third-party Go
// parsing library present anywhere in the retrieval corpus, so this
// package reads the package's XML parts directly with the standard
// library (archive/zip + encoding/xml), matching how the teacher handles
// every other raw-bytes-in, structured-data-out conversion in this repo.
package docx

import (
	"encoding/xml"
	"io"
	"strings"
)

// node is a namespace-agnostic XML tree node. OOXML mixes several XML
// namespaces (w:, wp:, a:, r:) whose prefixes are not stable across
// producers, so every lookup in this package matches on local name only.
type node struct {
	Local    string
	Attrs    []xml.Attr
	Children []*node
	Text     string
}

// attr returns the value of the first attribute whose local name matches
// name, regardless of namespace.
func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// find returns the first descendant (depth-first, not including n itself)
// whose local name matches name.
func (n *node) find(name string) *node {
	for _, c := range n.Children {
		if c.Local == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant whose local name matches name.
func (n *node) findAll(name string) []*node {
	var out []*node
	for _, c := range n.Children {
		if c.Local == name {
			out = append(out, c)
		}
		out = append(out, c.findAll(name)...)
	}
	return out
}

// children returns the direct children whose local name matches name.
func (n *node) children(name string) []*node {
	var out []*node
	for _, c := range n.Children {
		if c.Local == name {
			out = append(out, c)
		}
	}
	return out
}

// text concatenates all descendant character data in document order.
func (n *node) text() string {
	var b strings.Builder
	var walk func(*node)
	walk = func(cur *node) {
		b.WriteString(cur.Text)
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// parseXML builds a node tree from r.
func parseXML(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	var stack []*node
	root := &node{Local: "#root"}
	stack = append(stack, root)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{Local: t.Name.Local, Attrs: append([]xml.Attr(nil), t.Attr...)}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			cur := stack[len(stack)-1]
			cur.Text += string(t)
		}
	}
	return root, nil
}
