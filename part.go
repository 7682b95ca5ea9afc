package templao

import (
	"fmt"

	"github.com/isidrok/templao/tree"
)

// part is one live binding: a bound node it exclusively owns, an
// expression evaluator, and the cached last-applied output value. The
// cache starts as the Unset sentinel so the first present update always
// applies, and it short-circuits mutations whose cast value collapses to
// what is already rendered even when the underlying expression changed.
type part struct {
	kind PartKind
	name string
	tree tree.Tree
	node tree.Node
	expr evaluator
	last stored
}

func newPart(d PartDescriptor, t tree.Tree, n tree.Node) *part {
	return &part{
		kind: d.Kind,
		name: d.Name,
		tree: t,
		node: n,
		expr: parseExpression(d.Expression),
	}
}

// update applies the part against a context patch: no-op unless the
// evaluator reports a change, then cast per kind, compare against the
// last-applied cache, and mutate only on a real difference.
func (p *part) update(patch Context) {
	if !p.expr.Changed(patch) {
		return
	}
	raw := p.expr.Value(patch)

	switch p.kind {
	case PartText:
		s := stringify(raw)
		if p.applied(s) {
			return
		}
		p.tree.SetText(p.node, s)
	case PartAttribute:
		s := stringify(raw)
		if p.applied(s) {
			return
		}
		p.tree.SetAttr(p.node, p.name, s)
	case PartBooleanAttribute:
		b := truthy(raw)
		if p.applied(b) {
			return
		}
		p.tree.ToggleAttr(p.node, p.name, b)
	case PartProperty:
		if p.applied(raw) {
			return
		}
		p.tree.SetField(p.node, p.name, raw)
	default:
		// The kind set is closed; reaching this is a missing
		// kind-to-behavior mapping, not a runtime data error.
		panic(fmt.Sprintf("templao: no mutation behavior for part kind %v", p.kind))
	}
}

// applied reports whether the cast value equals the last-applied one and
// records it as last-applied otherwise.
func (p *part) applied(v any) bool {
	if p.last.set && identical(v, p.last.value) {
		return true
	}
	p.last = stored{set: true, value: v}
	return false
}
