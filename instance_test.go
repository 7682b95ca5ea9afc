package templao_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isidrok/templao"
	"github.com/isidrok/templao/tree"
)

func renderString(t *testing.T, inst *templao.TemplateInstance) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, inst.Render(&sb))
	return sb.String()
}

func TestInstance_TextBindingRendersValue(t *testing.T) {
	tpl := compileFragment(t, "{x}")
	inst := tpl.CreateInstance(templao.Context{"x": "v"})
	assert.Equal(t, "v", renderString(t, inst))
}

func TestInstance_InitialContextRunsOneFullUpdate(t *testing.T) {
	tpl := compileFragment(t, "<p>{greeting}</p>")

	withInitial := tpl.CreateInstance(templao.Context{"greeting": "hi"})
	assert.Equal(t, "<p>hi</p>", renderString(t, withInitial))

	withoutInitial := tpl.CreateInstance(nil)
	assert.Equal(t, "<p></p>", renderString(t, withoutInitial))
}

func TestInstance_OmittedKeyWithholdsUpdate(t *testing.T) {
	tpl := compileFragment(t, "<p>{x}</p>")
	inst, rec := tpl.CreateRecordedInstance(nil)

	inst.Update(templao.Context{"unrelated": 1})
	assert.Zero(t, rec.Len(), "a patch without the part's key must not mutate")

	inst.Update(templao.Context{"x": "v"})
	assert.Equal(t, 1, rec.Len())
	assert.Equal(t, "<p>v</p>", renderString(t, inst))
}

func TestInstance_UpdateTwiceWithIdenticalPatchIsIdempotent(t *testing.T) {
	tpl := compileFragment(t, `<p title="{t}">{x}</p>`)
	patch := templao.Context{"t": "tip", "x": "body"}

	inst, rec := tpl.CreateRecordedInstance(nil)
	inst.Update(patch)
	require.Equal(t, 2, rec.Len())

	rec.Reset()
	inst.Update(patch)
	assert.Zero(t, rec.Len(), "second identical update must not mutate")
}

func TestInstance_SameCastValueSkipsMutation(t *testing.T) {
	// The expression changed (0 -> false differ by identity) but both
	// stringify to "", so the second-level cache suppresses the write.
	tpl := compileFragment(t, "<p>{x}</p>")
	inst, rec := tpl.CreateRecordedInstance(nil)

	inst.Update(templao.Context{"x": 0})
	require.Equal(t, 1, rec.Len())

	rec.Reset()
	inst.Update(templao.Context{"x": false})
	assert.Zero(t, rec.Len())
	assert.Equal(t, "<p></p>", renderString(t, inst))
}

func TestInstance_BooleanAttributeToggles(t *testing.T) {
	tpl := compileFragment(t, `<button ?disabled="{flag}">go</button>`)

	inst := tpl.CreateInstance(templao.Context{"flag": ""})
	assert.Equal(t, "<button>go</button>", renderString(t, inst), "falsy value keeps the attribute absent")

	inst.Update(templao.Context{"flag": true})
	assert.Equal(t, `<button disabled="">go</button>`, renderString(t, inst), "truthy value makes it present with no value")

	inst.Update(templao.Context{"flag": 0})
	assert.Equal(t, "<button>go</button>", renderString(t, inst))
}

func TestInstance_PropertyAssignsRawValue(t *testing.T) {
	tpl := compileFragment(t, `<input .value="{v}">`)
	payload := []string{"raw"}
	inst := tpl.CreateInstance(templao.Context{"v": payload})

	var target tree.Node
	inst.Tree().Walk(func(n tree.Node, kind tree.NodeKind) {
		if kind == tree.Element && target == nil {
			target = n
		}
	})
	require.NotNil(t, target)

	got, ok := inst.Tree().Field(target, "value")
	require.True(t, ok)
	assert.Equal(t, payload, got, "property parts apply no cast")
}

func TestInstance_AttributeCastCollapsesFalsyToEmpty(t *testing.T) {
	tpl := compileFragment(t, `<div title="{t}">x</div>`)
	inst := tpl.CreateInstance(templao.Context{"t": nil})
	assert.Equal(t, `<div title="">x</div>`, renderString(t, inst))

	inst.Update(templao.Context{"t": 7})
	assert.Equal(t, `<div title="7">x</div>`, renderString(t, inst))
}

func TestInstance_DynamicExpressionComposesPartialPatches(t *testing.T) {
	tpl := compileFragment(t, "<p>{sum(a, b)}</p>")
	inst := tpl.CreateInstance(templao.Context{
		"sum": func(a, b int) int { return a + b },
		"a":   1,
		"b":   2,
	})
	assert.Equal(t, "<p>3</p>", renderString(t, inst))

	// Patch omits a and sum; a=1 is retained.
	inst.Update(templao.Context{"b": 5})
	assert.Equal(t, "<p>6</p>", renderString(t, inst))
}

func TestInstance_DynamicSameResultSkipsMutation(t *testing.T) {
	tpl := compileFragment(t, "<p>{pick(a, b)}</p>")
	inst, rec := tpl.CreateRecordedInstance(templao.Context{
		"pick": func(a, b string) string { return a },
		"a":    "keep",
		"b":    "x",
	})
	require.Equal(t, 1, rec.Len())

	// b changes, so the expression recomputes, but the rendered value is
	// the same and the mutation is skipped.
	rec.Reset()
	inst.Update(templao.Context{"b": "y"})
	assert.Zero(t, rec.Len())
	assert.Equal(t, "<p>keep</p>", renderString(t, inst))
}

func TestInstance_MixedPartsUpdateInIndexOrder(t *testing.T) {
	tpl := compileFragment(t, `<p title="{t}">{x}</p><span>{y}</span>`)
	inst, rec := tpl.CreateRecordedInstance(nil)

	inst.Update(templao.Context{"t": "a", "x": "b", "y": "c"})
	ops := rec.Take()
	require.Len(t, ops, 3)
	assert.Equal(t, tree.OpSetAttr, ops[0].Op)
	assert.Equal(t, tree.OpSetText, ops[1].Op)
	assert.Equal(t, tree.OpSetText, ops[2].Op)
	assert.Equal(t, `<p title="a">b</p><span>c</span>`, renderString(t, inst))
}

func TestInstance_PartCount(t *testing.T) {
	tpl := compileFragment(t, `<p title="{t}">{x}</p>`)
	inst := tpl.CreateInstance(nil)
	assert.Equal(t, 2, inst.PartCount())
}
