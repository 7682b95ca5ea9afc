// Package tree defines the host-tree collaborator contract the templao
// engine compiles and renders against.
//
// The engine itself is platform-agnostic: it only ever talks to a Tree.
// Implementations adapt a concrete node tree (an HTML document, a virtual
// tree, a native widget tree) to the small set of operations the compiler
// and the part runtime need: deep cloning, pre-order traversal over element
// and text nodes, text splitting, attribute manipulation, and host-field
// assignment.
package tree

import "io"

// NodeKind discriminates the two node kinds the engine traverses.
// Implementations may carry other kinds internally (comments, doctypes);
// those are never reported to a walk callback and never receive an index.
type NodeKind int

const (
	// Element is a node that carries attributes and children.
	Element NodeKind = iota
	// Text is a node that carries character data.
	Text
)

// Node is an opaque handle to one node owned by a Tree. Handles are only
// meaningful to the Tree that produced them and stay valid until the node
// is removed.
type Node any

// Attr is a named attribute on an element node.
type Attr struct {
	Name  string
	Value string
}

// Tree is the contract between the engine and a concrete tree
// implementation.
//
// Walk performs a pre-order traversal visiting element and text nodes
// only. The walk must capture each node's successor before invoking the
// callback, so that siblings inserted by the callback (text splits) are
// not themselves traversed; the compiler relies on this to keep its node
// indices aligned with instantiation-time walks.
//
// SplitText splits a text node at a byte offset: the node keeps the bytes
// before the offset and a new sibling inserted immediately after it
// receives the rest. The offset must be within [0, len(text)].
type Tree interface {
	// CloneDeep returns an independent deep copy of the whole tree,
	// including any host fields already assigned.
	CloneDeep() Tree

	// Walk visits element and text nodes in pre-order.
	Walk(visit func(n Node, kind NodeKind))

	// Text returns a text node's character data.
	Text(n Node) string
	// SetText replaces a text node's character data.
	SetText(n Node, text string)
	// SplitText splits a text node at a byte offset and returns the new
	// sibling holding the remainder.
	SplitText(n Node, offset int) Node
	// Remove detaches a node from the tree.
	Remove(n Node)

	// Attrs returns a snapshot of an element's attributes in order.
	Attrs(n Node) []Attr
	// Attr returns a named attribute's value and whether it is present.
	Attr(n Node, name string) (string, bool)
	// SetAttr sets or overwrites a named attribute.
	SetAttr(n Node, name, value string)
	// RemoveAttr deletes a named attribute if present.
	RemoveAttr(n Node, name string)
	// ToggleAttr makes a valueless attribute present or absent.
	ToggleAttr(n Node, name string, present bool)

	// SetField assigns a named field on the node's host object.
	SetField(n Node, name string, value any)
	// Field reads a named host field and whether it was ever assigned.
	Field(n Node, name string) (any, bool)
}

// Renderer is implemented by trees that can serialize themselves back to
// their source representation.
type Renderer interface {
	Render(w io.Writer) error
}
