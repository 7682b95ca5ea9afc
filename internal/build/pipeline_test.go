package build

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isidrok/templao"
	"github.com/isidrok/templao/internal/errors"
	"github.com/isidrok/templao/internal/logging"
	"github.com/isidrok/templao/internal/registry"
)

func testLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelError, Output: os.Stderr})
}

func registerFile(t *testing.T, reg *registry.TemplateRegistry, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name+".html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	reg.Register(&registry.TemplateInfo{Name: name, FilePath: path})
	return path
}

func TestPipelineBuildAll(t *testing.T) {
	dir := t.TempDir()
	reg := registry.NewTemplateRegistry()
	registerFile(t, reg, dir, "button", `<button title="{t}">{label}</button>`)
	registerFile(t, reg, dir, "card", `<div>{body}</div>`)

	p := NewPipeline(2, reg, testLogger())
	metrics := p.BuildAll(context.Background())

	assert.Equal(t, 2, metrics.Compiled)
	assert.Equal(t, 0, metrics.Failed)
	assert.Equal(t, 2, p.Cache().Size())

	// Compilation fills in the registry metadata.
	button, ok := reg.Get("button")
	require.True(t, ok)
	assert.Equal(t, []string{"label", "t"}, button.Keys)
	assert.Equal(t, 2, button.PartCount)
	assert.NotEmpty(t, button.Hash)
}

func TestPipelineCacheHitOnUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	reg := registry.NewTemplateRegistry()
	registerFile(t, reg, dir, "button", "<button>{x}</button>")

	p := NewPipeline(1, reg, testLogger())
	first := p.BuildAll(context.Background())
	assert.Equal(t, 1, first.Compiled)

	second := p.BuildAll(context.Background())
	assert.Equal(t, 0, second.Compiled)
	assert.Equal(t, 1, second.CacheHits)
}

func TestPipelineRecompilesOnChange(t *testing.T) {
	dir := t.TempDir()
	reg := registry.NewTemplateRegistry()
	path := registerFile(t, reg, dir, "button", "<button>{x}</button>")

	p := NewPipeline(1, reg, testLogger())
	tpl1, err := p.Get(context.Background(), "button")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("<button>{y}</button>"), 0o644))
	tpl2, err := p.Get(context.Background(), "button")
	require.NoError(t, err)

	assert.NotSame(t, tpl1, tpl2)
	assert.Equal(t, []string{"y"}, tpl2.Keys())
}

func TestPipelineGetUnknownTemplate(t *testing.T) {
	reg := registry.NewTemplateRegistry()
	reg.Register(&registry.TemplateInfo{Name: "button", FilePath: "nowhere.html"})

	p := NewPipeline(1, reg, testLogger())
	_, err := p.Get(context.Background(), "buton")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "button", "suggestion should name the close match")
}

func TestPipelineMissingFileCountsAsFailure(t *testing.T) {
	reg := registry.NewTemplateRegistry()
	reg.Register(&registry.TemplateInfo{Name: "ghost", FilePath: filepath.Join(t.TempDir(), "ghost.html")})

	p := NewPipeline(1, reg, testLogger())
	metrics := p.BuildAll(context.Background())
	assert.Equal(t, 1, metrics.Failed)
}

func TestCompiledTemplateRenders(t *testing.T) {
	dir := t.TempDir()
	reg := registry.NewTemplateRegistry()
	registerFile(t, reg, dir, "greet", "<p>{name}</p>")

	p := NewPipeline(1, reg, testLogger())
	tpl, err := p.Get(context.Background(), "greet")
	require.NoError(t, err)

	inst := tpl.CreateInstance(templao.Context{"name": "world"})
	var out bytes.Buffer
	require.NoError(t, inst.Render(&out))
	assert.Equal(t, "<p>world</p>", out.String())
}
