package templao

import (
	"fmt"
	"io"
	"sort"

	"github.com/isidrok/templao/tree"
)

// Context carries the values expressions resolve against. Every call
// treats its context as a patch: only the keys it contains take part in
// change detection, so repeated partial patches compose.
type Context map[string]any

// Func is the canonical signature for functions supplied to dynamic
// expressions. Arbitrary Go functions also work; their parameters are
// filled positionally by reflection.
type Func func(args ...any) any

// PartKind identifies the mutation a part performs. The set is closed:
// dispatch is an exhaustive switch and an unknown kind is a programming
// error, never a data error.
type PartKind int

const (
	// PartText replaces a text node's content.
	PartText PartKind = iota
	// PartAttribute sets a named string attribute on an element.
	PartAttribute
	// PartProperty assigns a named field on an element's host object.
	PartProperty
	// PartBooleanAttribute toggles a valueless attribute's presence.
	PartBooleanAttribute
)

// String returns the kind's name.
func (k PartKind) String() string {
	switch k {
	case PartText:
		return "text"
	case PartAttribute:
		return "attribute"
	case PartProperty:
		return "property"
	case PartBooleanAttribute:
		return "boolean-attribute"
	default:
		return fmt.Sprintf("PartKind(%d)", int(k))
	}
}

// PartDescriptor is one compiled binding: the mutation kind, the raw
// expression source found between the braces, and, for attribute and
// property kinds, the target name with its classification prefix removed.
type PartDescriptor struct {
	Kind       PartKind
	Expression string
	Name       string
}

// Template is the immutable result of compilation: the rewritten source
// tree shape plus a table mapping node indices to the part descriptors
// discovered at that index. A Template is never mutated after Compile
// returns and may be instantiated many times, including concurrently.
type Template struct {
	tree  tree.Tree
	parts map[int][]PartDescriptor
}

// Descriptors returns the descriptors registered at a node index, in
// discovery order. The returned slice must not be modified.
func (t *Template) Descriptors(index int) []PartDescriptor {
	return t.parts[index]
}

// PartCount reports how many part descriptors the template carries.
func (t *Template) PartCount() int {
	n := 0
	for _, ds := range t.parts {
		n += len(ds)
	}
	return n
}

// Keys returns the sorted set of distinct context keys the template's
// expressions depend on: static keys plus every dynamic function and
// parameter key.
func (t *Template) Keys() []string {
	seen := make(map[string]struct{})
	for _, ds := range t.parts {
		for _, d := range ds {
			expr := parseExpression(d.Expression)
			switch e := expr.(type) {
			case *staticExpression:
				seen[e.key] = struct{}{}
			case *dynamicExpression:
				seen[e.fnKey] = struct{}{}
				for _, p := range e.params {
					seen[p] = struct{}{}
				}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CreateInstance clones the compiled tree, walks the clone with the same
// traversal the compiler used, and binds one part runtime per descriptor
// in index order. A non-nil initial context triggers one full Update
// before the instance is returned.
func (t *Template) CreateInstance(initial Context) *TemplateInstance {
	return t.newInstance(t.tree.CloneDeep(), initial)
}

// CreateRecordedInstance is CreateInstance with the clone wrapped in a
// tree.Recorder, so every mutation the instance performs is observable.
// Compilation-time mutations are not part of the log.
func (t *Template) CreateRecordedInstance(initial Context) (*TemplateInstance, *tree.Recorder) {
	rec := tree.NewRecorder(t.tree.CloneDeep())
	return t.newInstance(rec, initial), rec
}

func (t *Template) newInstance(clone tree.Tree, initial Context) *TemplateInstance {
	inst := &TemplateInstance{tree: clone}
	index := 0
	clone.Walk(func(n tree.Node, kind tree.NodeKind) {
		for _, d := range t.parts[index] {
			inst.parts = append(inst.parts, newPart(d, clone, n))
		}
		index++
	})
	if initial != nil {
		inst.Update(initial)
	}
	return inst
}

// Render is the one-shot path: instantiate with the given context,
// serialize the result, and discard the instance. The template's tree
// implementation must support rendering.
func (t *Template) Render(w io.Writer, ctx Context) error {
	return t.CreateInstance(ctx).Render(w)
}
