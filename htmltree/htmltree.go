// Package htmltree implements the tree.Tree contract over
// golang.org/x/net/html node trees. It is the default host tree used by
// the templao CLI and preview server: fragments and full documents parse
// into a Tree, the engine compiles and mutates it through the contract,
// and Render serializes the result back to HTML text.
//
// Property parts target a per-node host-field bag rather than the markup;
// fields survive cloning but are never serialized.
package htmltree

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/isidrok/templao/tree"
)

// Tree adapts an *html.Node tree to the engine's tree contract.
type Tree struct {
	root   *html.Node
	fields map[*html.Node]map[string]any
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Tree, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Tree{root: root, fields: make(map[*html.Node]map[string]any)}, nil
}

// ParseFragment reads an HTML fragment in body context. The fragment's
// top-level nodes hang off a synthetic document node that is never
// indexed by the engine.
func ParseFragment(content string) (*Tree, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Tree{root: root, fields: make(map[*html.Node]map[string]any)}, nil
}

// Root exposes the underlying document node for callers that need direct
// access, such as tests and serializers.
func (t *Tree) Root() *html.Node {
	return t.root
}

// CloneDeep returns an independent copy of the tree, host fields included.
func (t *Tree) CloneDeep() tree.Tree {
	clone := &Tree{fields: make(map[*html.Node]map[string]any)}
	clone.root = t.cloneNode(t.root, clone)
	return clone
}

func (t *Tree) cloneNode(n *html.Node, into *Tree) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	if bag, ok := t.fields[n]; ok {
		copied := make(map[string]any, len(bag))
		for k, v := range bag {
			copied[k] = v
		}
		into.fields[c] = copied
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(t.cloneNode(child, into))
	}
	return c
}

// Walk visits element and text nodes in pre-order. Each node's successor
// is captured before the callback runs, so siblings inserted by the
// callback are not traversed.
func (t *Tree) Walk(visit func(n tree.Node, kind tree.NodeKind)) {
	t.walk(t.root, visit)
}

func (t *Tree) walk(parent *html.Node, visit func(n tree.Node, kind tree.NodeKind)) {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.ElementNode:
			visit(c, tree.Element)
			t.walk(c, visit)
		case html.TextNode:
			visit(c, tree.Text)
		}
		c = next
	}
}

// Text returns a text node's character data.
func (t *Tree) Text(n tree.Node) string {
	return n.(*html.Node).Data
}

// SetText replaces a text node's character data.
func (t *Tree) SetText(n tree.Node, text string) {
	n.(*html.Node).Data = text
}

// SplitText splits a text node at a byte offset; the node keeps the head
// and the returned sibling holds the tail.
func (t *Tree) SplitText(n tree.Node, offset int) tree.Node {
	hn := n.(*html.Node)
	rest := &html.Node{Type: html.TextNode, Data: hn.Data[offset:]}
	hn.Data = hn.Data[:offset]
	hn.Parent.InsertBefore(rest, hn.NextSibling)
	return rest
}

// Remove detaches a node and drops its host fields.
func (t *Tree) Remove(n tree.Node) {
	hn := n.(*html.Node)
	if hn.Parent != nil {
		hn.Parent.RemoveChild(hn)
	}
	delete(t.fields, hn)
}

// Attrs returns a snapshot of an element's attributes in source order.
func (t *Tree) Attrs(n tree.Node) []tree.Attr {
	hn := n.(*html.Node)
	attrs := make([]tree.Attr, 0, len(hn.Attr))
	for _, a := range hn.Attr {
		attrs = append(attrs, tree.Attr{Name: a.Key, Value: a.Val})
	}
	return attrs
}

// Attr returns a named attribute's value and presence.
func (t *Tree) Attr(n tree.Node, name string) (string, bool) {
	for _, a := range n.(*html.Node).Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or overwrites a named attribute.
func (t *Tree) SetAttr(n tree.Node, name, value string) {
	hn := n.(*html.Node)
	for i, a := range hn.Attr {
		if a.Key == name {
			hn.Attr[i].Val = value
			return
		}
	}
	hn.Attr = append(hn.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes a named attribute if present.
func (t *Tree) RemoveAttr(n tree.Node, name string) {
	hn := n.(*html.Node)
	for i, a := range hn.Attr {
		if a.Key == name {
			hn.Attr = append(hn.Attr[:i], hn.Attr[i+1:]...)
			return
		}
	}
}

// ToggleAttr makes a valueless attribute present or absent.
func (t *Tree) ToggleAttr(n tree.Node, name string, present bool) {
	if present {
		if _, ok := t.Attr(n, name); !ok {
			hn := n.(*html.Node)
			hn.Attr = append(hn.Attr, html.Attribute{Key: name})
		}
		return
	}
	t.RemoveAttr(n, name)
}

// SetField assigns a named field on the node's host bag.
func (t *Tree) SetField(n tree.Node, name string, value any) {
	hn := n.(*html.Node)
	bag, ok := t.fields[hn]
	if !ok {
		bag = make(map[string]any)
		t.fields[hn] = bag
	}
	bag[name] = value
}

// Field reads a named host field and whether it was ever assigned.
func (t *Tree) Field(n tree.Node, name string) (any, bool) {
	if bag, ok := t.fields[n.(*html.Node)]; ok {
		v, ok := bag[name]
		return v, ok
	}
	return nil, false
}

// Render serializes the tree back to HTML text.
func (t *Tree) Render(w io.Writer) error {
	return html.Render(w, t.root)
}

// RenderString is a convenience wrapper around Render.
func (t *Tree) RenderString() (string, error) {
	var sb strings.Builder
	if err := t.Render(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
