package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isidrok/templao/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelError, Output: os.Stderr})
}

func TestFilters(t *testing.T) {
	tf := TemplateFilter([]string{".html", ".tmpl.html"})
	assert.True(t, tf("templates/button.html"))
	assert.True(t, tf("a/card.tmpl.html"))
	assert.False(t, tf("style.css"))

	assert.True(t, ContextFilter("context.yaml"))
	assert.True(t, ContextFilter("data/ctx.yml"))
	assert.False(t, ContextFilter("context.json"))

	assert.True(t, NoGitFilter("templates/button.html"))
	assert.False(t, NoGitFilter(".git/config"))
	assert.False(t, NoGitFilter("a/.git/b"))
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "created", EventTypeCreated.String())
	assert.Equal(t, "modified", EventTypeModified.String())
	assert.Equal(t, "deleted", EventTypeDeleted.String())
	assert.Equal(t, "renamed", EventTypeRenamed.String())
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "button.html")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	fw, err := NewFileWatcher(50*time.Millisecond, testLogger())
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(TemplateFilter([]string{".html"}))

	var mu sync.Mutex
	var batches [][]ChangeEvent
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, events)
		return nil
	})

	require.NoError(t, fw.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	// Several rapid writes to one file should collapse into one batch
	// with one deduplicated event.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) >= 1
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, batches[0], 1)
	assert.Equal(t, path, batches[0][0].Path)
}

func TestWatcherIgnoresFilteredFiles(t *testing.T) {
	dir := t.TempDir()

	fw, err := NewFileWatcher(30*time.Millisecond, testLogger())
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(TemplateFilter([]string{".html"}))

	var mu sync.Mutex
	seen := 0
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		seen += len(events)
		return nil
	})

	require.NoError(t, fw.AddPath(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, seen)
}
