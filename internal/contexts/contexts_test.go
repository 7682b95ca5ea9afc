package contexts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalars(t *testing.T) {
	ctx, err := Parse([]byte("title: hello\ncount: 3\nratio: 0.5\nenabled: true\nempty: \"\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "hello", ctx["title"])
	assert.Equal(t, 3, ctx["count"])
	assert.Equal(t, 0.5, ctx["ratio"])
	assert.Equal(t, true, ctx["enabled"])
	assert.Equal(t, "", ctx["empty"])
}

func TestParseNestedStructures(t *testing.T) {
	ctx, err := Parse([]byte("user:\n  name: ada\n  tags:\n    - a\n    - b\n"))
	require.NoError(t, err)

	user, ok := ctx["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada", user["name"])
	assert.Equal(t, []any{"a", "b"}, user["tags"])
}

func TestParseRejectsNonMapping(t *testing.T) {
	_, err := Parse([]byte("- just\n- a\n- list\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.yaml")
	require.NoError(t, os.WriteFile(path, []byte("label: go\n"), 0o644))

	ctx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "go", ctx["label"])

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
