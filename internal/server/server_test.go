package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isidrok/templao/internal/config"
	"github.com/isidrok/templao/internal/logging"
	"github.com/isidrok/templao/internal/watcher"
)

func newTestServer(t *testing.T) (*PreviewServer, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "button.html"), []byte(`<button title="{tip}">{label}</button>`), 0o644))

	ctxFile := filepath.Join(dir, "context.yaml")
	require.NoError(t, os.WriteFile(ctxFile, []byte("label: go\ntip: press\n"), 0o644))

	cfg := &config.Config{
		Server:    config.ServerConfig{Host: "localhost", Port: 8120},
		Templates: config.TemplatesConfig{ScanPaths: []string{dir}, Extensions: []string{".html"}},
		Preview:   config.PreviewConfig{ContextFile: ctxFile},
	}
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelError, Output: os.Stderr})
	s, err := New(cfg, logger)
	require.NoError(t, err)

	require.NoError(t, s.scanner.ScanAll(context.Background()))
	s.pipeline.BuildAll(context.Background())
	return s, dir
}

func TestIndexListsTemplates(t *testing.T) {
	s, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	s.handleIndex(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `/preview/button`)
	assert.Contains(t, body, "Button", "titles are title-cased")
	assert.Contains(t, body, "label")
	assert.Contains(t, body, "tip")
}

func TestPreviewRendersWithContextFile(t *testing.T) {
	s, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	s.handlePreview(rr, httptest.NewRequest(http.MethodGet, "/preview/button", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<button title="press">go</button>`)
}

func TestPreviewUnknownTemplateIs404(t *testing.T) {
	s, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	s.handlePreview(rr, httptest.NewRequest(http.MethodGet, "/preview/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContextPatchBroadcastsOnlyRealChanges(t *testing.T) {
	s, dir := newTestServer(t)

	// Warm the preview instance.
	rr := httptest.NewRecorder()
	s.handlePreview(rr, httptest.NewRequest(http.MethodGet, "/preview/button", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	c := &client{send: make(chan []byte, 4)}
	s.mutex.Lock()
	s.clients[c] = struct{}{}
	s.mutex.Unlock()

	ctxFile := filepath.Join(dir, "context.yaml")

	// Same values: the engine applies nothing, so nothing is broadcast.
	s.applyContextPatch(context.Background(), ctxFile)
	assert.Empty(t, c.send)

	// A changed value produces a patch message.
	require.NoError(t, os.WriteFile(ctxFile, []byte("label: stop\ntip: press\n"), 0o644))
	s.applyContextPatch(context.Background(), ctxFile)
	require.Len(t, c.send, 1)
	assert.Contains(t, string(<-c.send), `"type":"patch"`)
}

func TestTemplateChangeTriggersFullReload(t *testing.T) {
	s, dir := newTestServer(t)

	c := &client{send: make(chan []byte, 4)}
	s.mutex.Lock()
	s.clients[c] = struct{}{}
	s.mutex.Unlock()

	path := filepath.Join(dir, "button.html")
	require.NoError(t, os.WriteFile(path, []byte("<button>{label}</button>"), 0o644))

	err := s.handleChanges(context.Background(), []watcher.ChangeEvent{
		{Type: watcher.EventTypeModified, Path: path},
	})
	require.NoError(t, err)

	require.Len(t, c.send, 1)
	assert.Contains(t, string(<-c.send), `"type":"full_reload"`)
}

func TestCheckOrigin(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.False(t, s.checkOrigin(req), "missing origin rejected")

	req.Header.Set("Origin", "http://localhost:8120")
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, s.checkOrigin(req))

	s.config.Server.AllowedOrigins = []string{"evil.example"}
	assert.True(t, s.checkOrigin(req))
}
