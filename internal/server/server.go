// Package server provides the templao preview server: it renders
// registered templates in the browser, rebuilds them on file changes,
// and pushes incremental patch messages over WebSocket when the context
// file changes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/isidrok/templao"
	"github.com/isidrok/templao/internal/build"
	"github.com/isidrok/templao/internal/config"
	"github.com/isidrok/templao/internal/contexts"
	"github.com/isidrok/templao/internal/logging"
	"github.com/isidrok/templao/internal/registry"
	"github.com/isidrok/templao/internal/render"
	"github.com/isidrok/templao/internal/scanner"
	"github.com/isidrok/templao/internal/watcher"
	"github.com/isidrok/templao/tree"
)

// PreviewServer serves template previews with live reload.
type PreviewServer struct {
	config    *config.Config
	registry  *registry.TemplateRegistry
	scanner   *scanner.TemplateScanner
	pipeline  *build.Pipeline
	renderer  *render.Renderer
	watcher   *watcher.FileWatcher
	logger    logging.Logger
	sanitizer *bluemonday.Policy

	httpServer *http.Server

	mutex    sync.Mutex
	clients  map[*client]struct{}
	previews map[string]*preview
}

// preview is one live template instance kept warm for patch pushes.
type preview struct {
	instance *templao.TemplateInstance
	recorder *tree.Recorder
}

// New assembles a preview server from its collaborators.
func New(cfg *config.Config, logger logging.Logger) (*PreviewServer, error) {
	reg := registry.NewTemplateRegistry()
	pipeline := build.NewPipeline(0, reg, logger)

	fw, err := watcher.NewFileWatcher(300*time.Millisecond, logger)
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	s := &PreviewServer{
		config:   cfg,
		registry: reg,
		scanner:  scanner.NewTemplateScanner(reg, &cfg.Templates, logger),
		pipeline: pipeline,
		renderer: render.NewRenderer(pipeline, logger),
		watcher:  fw,
		logger:   logger.WithComponent("server"),
		clients:  make(map[*client]struct{}),
		previews: make(map[string]*preview),
	}
	if cfg.Preview.Sanitize {
		s.sanitizer = bluemonday.UGCPolicy()
	}
	return s, nil
}

// Start scans, builds, begins watching, and serves until ctx is
// cancelled.
func (s *PreviewServer) Start(ctx context.Context) error {
	if err := s.scanner.ScanAll(ctx); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}
	s.pipeline.BuildAll(ctx)

	if s.config.Development.LiveReload {
		if err := s.startWatching(ctx); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/preview/", s.handlePreview)
	mux.HandleFunc("/ws", s.handleWebSocket)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.Shutdown(context.Background())
	}()

	s.logger.Info(ctx, "Preview server listening", "addr", "http://"+addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server, the watcher, and every client.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	s.mutex.Lock()
	for c := range s.clients {
		c.close()
	}
	s.clients = make(map[*client]struct{})
	s.mutex.Unlock()

	if err := s.watcher.Stop(); err != nil {
		s.logger.Warn(ctx, err, "Stopping watcher")
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *PreviewServer) startWatching(ctx context.Context) error {
	templateFilter := watcher.TemplateFilter(s.config.Templates.Extensions)
	s.watcher.AddFilter(func(path string) bool {
		return templateFilter(path) || watcher.ContextFilter(path)
	})
	s.watcher.AddFilter(watcher.NoGitFilter)
	s.watcher.AddHandler(func(events []watcher.ChangeEvent) error {
		return s.handleChanges(ctx, events)
	})

	for _, root := range s.config.Templates.ScanPaths {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		if err := s.watcher.AddRecursive(root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}
	if _, err := os.Stat(s.config.Preview.ContextFile); err == nil {
		if err := s.watcher.AddPath(s.config.Preview.ContextFile); err != nil {
			return fmt.Errorf("watching context file: %w", err)
		}
	}

	s.watcher.Start(ctx)
	return nil
}

// handleChanges routes a debounced batch: context-file edits become
// incremental patch pushes, template edits become rebuilds plus a full
// reload.
func (s *PreviewServer) handleChanges(ctx context.Context, events []watcher.ChangeEvent) error {
	reload := false
	for _, event := range events {
		if watcher.ContextFilter(event.Path) {
			s.applyContextPatch(ctx, event.Path)
			continue
		}

		name := scanner.TemplateName(event.Path)
		if event.Type == watcher.EventTypeDeleted {
			s.registry.Remove(name)
		} else if err := s.scanner.ScanFile(ctx, event.Path); err != nil {
			s.logger.Warn(ctx, err, "Rescan failed", "path", event.Path)
			continue
		} else if err := s.pipeline.Build(ctx, name); err != nil {
			s.logger.Warn(ctx, err, "Rebuild failed", "template", name)
			continue
		}

		s.dropPreview(name)
		reload = true
	}

	if reload {
		s.broadcast(Message{Type: MessageFullReload})
	}
	return nil
}

// applyContextPatch updates every live preview instance with the new
// context values and broadcasts the mutations each one produced. An
// unchanged value produces no ops and no message: the engine's
// minimal-update property, made observable.
func (s *PreviewServer) applyContextPatch(ctx context.Context, path string) {
	patch, err := contexts.Load(path)
	if err != nil {
		s.logger.Warn(ctx, err, "Context file unreadable", "path", path)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for name, p := range s.previews {
		p.instance.Update(patch)
		ops := p.recorder.Take()
		if len(ops) == 0 {
			continue
		}
		s.broadcastLocked(Message{Type: MessagePatch, Target: name, Ops: patchOps(ops)})
		s.logger.Debug(ctx, "Pushed patch", "template", name, "ops", len(ops))
	}
}

// livePreview returns the warm instance for a template, creating it with
// the current context file values on first use.
func (s *PreviewServer) livePreview(ctx context.Context, name string) (*preview, error) {
	s.mutex.Lock()
	if p, ok := s.previews[name]; ok {
		s.mutex.Unlock()
		return p, nil
	}
	s.mutex.Unlock()

	initial, err := contexts.Load(s.config.Preview.ContextFile)
	if err != nil {
		initial = templao.Context{}
	}
	inst, rec, err := s.renderer.Instantiate(ctx, name, initial)
	if err != nil {
		return nil, err
	}
	rec.Reset()

	p := &preview{instance: inst, recorder: rec}
	s.mutex.Lock()
	s.previews[name] = p
	s.mutex.Unlock()
	return p, nil
}

func (s *PreviewServer) dropPreview(name string) {
	s.mutex.Lock()
	delete(s.previews, name)
	s.mutex.Unlock()
}
