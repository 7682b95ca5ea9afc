package templao

import (
	"strings"

	"github.com/isidrok/templao/tree"
)

// Compile walks a source tree once, discovers placeholder expressions,
// assigns stable node indices, and returns the immutable Template.
//
// The walk is pre-order over element and text nodes only; the running
// index counts each element node and each text segment that survives
// compilation, in visit order. Text nodes split around their placeholders:
// the span of each placeholder becomes its own emptied segment anchoring a
// text part, and segments left empty (placeholder-adjacent prefixes,
// suffixes, and source-authored empty text nodes) are deleted after the
// walk so they never receive an index and are never counted at
// instantiation time. Bound attributes are stripped from their elements;
// their values are fully runtime-controlled from then on.
//
// Compile takes ownership of src: the tree is rewritten in place and must
// not be used by the caller afterwards.
func Compile(src tree.Tree) *Template {
	c := &compiler{tree: src, parts: make(map[int][]PartDescriptor)}
	src.Walk(func(n tree.Node, kind tree.NodeKind) {
		switch kind {
		case tree.Element:
			c.compileElement(n)
			c.index++
		case tree.Text:
			c.compileText(n)
		}
	})
	for _, n := range c.empty {
		src.Remove(n)
	}
	return &Template{tree: src, parts: c.parts}
}

type compiler struct {
	tree  tree.Tree
	parts map[int][]PartDescriptor
	index int
	empty []tree.Node
}

// compileText splits one source text node into static segments and
// placeholder anchors. The walk captured this node's successor before
// calling us, so the siblings created here are handled entirely within
// this call and indexed exactly once.
func (c *compiler) compileText(n tree.Node) {
	node := n
	for {
		text := c.tree.Text(node)
		loc := placeholderPattern.FindStringIndex(text)
		if loc == nil {
			break
		}

		// Everything before the placeholder becomes its own segment. An
		// empty prefix never receives an index; it is flagged for removal.
		rest := c.tree.SplitText(node, loc[0])
		if loc[0] == 0 {
			c.empty = append(c.empty, node)
		} else {
			c.index++
		}
		node = rest

		// Isolate the placeholder's exact span, clear it, and anchor a
		// text part to it at the current index.
		tail := c.tree.SplitText(node, loc[1]-loc[0])
		expr := text[loc[0]+1 : loc[1]-1]
		c.parts[c.index] = append(c.parts[c.index], PartDescriptor{Kind: PartText, Expression: expr})
		c.index++
		c.tree.SetText(node, "")
		node = tail
	}

	// The trailing segment is either a static indexed segment or, when
	// empty, another removal candidate.
	if c.tree.Text(node) == "" {
		c.empty = append(c.empty, node)
	} else {
		c.index++
	}
}

// compileElement classifies every bound attribute by its name prefix and
// registers the descriptor at the element's index. Classification is
// total: `?x` toggles the boolean attribute x, `.x` assigns the host
// property x, anything else binds the attribute under its original name.
func (c *compiler) compileElement(n tree.Node) {
	for _, attr := range c.tree.Attrs(n) {
		m := attributePattern.FindStringSubmatch(attr.Value)
		if m == nil {
			continue
		}
		var d PartDescriptor
		switch {
		case strings.HasPrefix(attr.Name, "?"):
			d = PartDescriptor{Kind: PartBooleanAttribute, Expression: m[1], Name: attr.Name[1:]}
		case strings.HasPrefix(attr.Name, "."):
			d = PartDescriptor{Kind: PartProperty, Expression: m[1], Name: attr.Name[1:]}
		default:
			d = PartDescriptor{Kind: PartAttribute, Expression: m[1], Name: attr.Name}
		}
		c.parts[c.index] = append(c.parts[c.index], d)
		c.tree.RemoveAttr(n, attr.Name)
	}
}
