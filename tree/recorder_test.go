package tree_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isidrok/templao/htmltree"
	"github.com/isidrok/templao/tree"
)

func recordedFixture(t *testing.T) (*tree.Recorder, tree.Node, tree.Node) {
	t.Helper()
	ht, err := htmltree.ParseFragment("<div>text</div>")
	require.NoError(t, err)

	rec := tree.NewRecorder(ht)
	var el, txt tree.Node
	rec.Walk(func(n tree.Node, kind tree.NodeKind) {
		if kind == tree.Element {
			el = n
		} else {
			txt = n
		}
	})
	return rec, el, txt
}

func TestRecorderLogsEveryMutation(t *testing.T) {
	rec, el, txt := recordedFixture(t)

	rec.SetText(txt, "new")
	rec.SetAttr(el, "title", "t")
	rec.ToggleAttr(el, "hidden", true)
	rec.RemoveAttr(el, "title")
	rec.SetField(el, "value", 1)

	ops := rec.Mutations()
	require.Len(t, ops, 5)
	assert.Equal(t, tree.OpSetText, ops[0].Op)
	assert.Equal(t, tree.OpSetAttr, ops[1].Op)
	assert.Equal(t, tree.OpToggleAttr, ops[2].Op)
	assert.Equal(t, tree.OpRemoveAttr, ops[3].Op)
	assert.Equal(t, tree.OpSetField, ops[4].Op)

	// Writes went through to the underlying tree.
	v, ok := rec.Attr(el, "hidden")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, "new", rec.Text(txt))
}

func TestRecorderTakeClearsLog(t *testing.T) {
	rec, _, txt := recordedFixture(t)

	rec.SetText(txt, "a")
	assert.Len(t, rec.Take(), 1)
	assert.Zero(t, rec.Len())

	rec.SetText(txt, "b")
	assert.Equal(t, 1, rec.Len())
	rec.Reset()
	assert.Zero(t, rec.Len())
}

func TestRecorderCloneStartsFresh(t *testing.T) {
	rec, _, txt := recordedFixture(t)
	rec.SetText(txt, "mutated")

	clone, ok := rec.CloneDeep().(*tree.Recorder)
	require.True(t, ok)
	assert.Zero(t, clone.Len())
}

func TestRecorderDelegatesRender(t *testing.T) {
	rec, _, _ := recordedFixture(t)
	var sb strings.Builder
	require.NoError(t, rec.Render(&sb))
	assert.Equal(t, "<div>text</div>", sb.String())
}
