package templao

import (
	"fmt"
	"io"

	"github.com/isidrok/templao/tree"
)

// TemplateInstance owns one cloned tree and the ordered part bindings
// attached to it. The part order equals compile-time node-index order,
// which equals instantiation-time traversal order; that alignment is what
// makes every binding land on the correct live node.
//
// Instances are single-threaded: Update must not be called concurrently,
// and each part exclusively owns its bound node. Discard the instance to
// tear it down; there is no explicit close.
type TemplateInstance struct {
	tree  tree.Tree
	parts []*part
}

// Update applies a context patch to every part in index order. Only keys
// present in the patch take part in change detection, so partial patches
// compose: omitting a key simply withholds that part's update this call.
func (i *TemplateInstance) Update(patch Context) {
	for _, p := range i.parts {
		p.update(patch)
	}
}

// Tree exposes the instance's live tree.
func (i *TemplateInstance) Tree() tree.Tree {
	return i.tree
}

// PartCount reports how many live bindings the instance holds.
func (i *TemplateInstance) PartCount() int {
	return len(i.parts)
}

// Render serializes the instance's current tree. The tree implementation
// must support rendering.
func (i *TemplateInstance) Render(w io.Writer) error {
	r, ok := i.tree.(tree.Renderer)
	if !ok {
		return fmt.Errorf("templao: tree %T does not support rendering", i.tree)
	}
	return r.Render(w)
}
