// Package build compiles registered templates through a worker pool and
// caches the results by content hash.
package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/isidrok/templao"
	"github.com/isidrok/templao/htmltree"
	"github.com/isidrok/templao/internal/errors"
	"github.com/isidrok/templao/internal/logging"
	"github.com/isidrok/templao/internal/registry"
)

// Metrics summarizes one BuildAll run.
type Metrics struct {
	Compiled  int
	CacheHits int
	Failed    int
	Duration  time.Duration
}

// Pipeline compiles registry entries concurrently. Each worker compiles
// its own tree, so the single-threaded engine contract is preserved per
// template.
type Pipeline struct {
	workers  int
	registry *registry.TemplateRegistry
	cache    *CompileCache
	logger   logging.Logger
}

// NewPipeline creates a build pipeline. workers <= 0 selects GOMAXPROCS.
func NewPipeline(workers int, reg *registry.TemplateRegistry, logger logging.Logger) *Pipeline {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		workers:  workers,
		registry: reg,
		cache:    NewCompileCache(),
		logger:   logger.WithComponent("build"),
	}
}

// Cache exposes the pipeline's compile cache.
func (p *Pipeline) Cache() *CompileCache {
	return p.cache
}

// BuildAll compiles every registered template and reports metrics.
// Individual compile failures are logged and counted, not fatal.
func (p *Pipeline) BuildAll(ctx context.Context) *Metrics {
	start := time.Now()
	infos := p.registry.GetAll()

	names := make([]string, 0, len(infos))
	for name := range infos {
		names = append(names, name)
	}
	sort.Strings(names)

	jobs := make(chan *registry.TemplateInfo)
	var mu sync.Mutex
	metrics := &Metrics{}

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for info := range jobs {
				_, hit, err := p.build(ctx, info)
				mu.Lock()
				switch {
				case err != nil:
					metrics.Failed++
				case hit:
					metrics.CacheHits++
				default:
					metrics.Compiled++
				}
				mu.Unlock()
			}
		}()
	}

	for _, name := range names {
		select {
		case <-ctx.Done():
		case jobs <- infos[name]:
		}
	}
	close(jobs)
	wg.Wait()

	metrics.Duration = time.Since(start)
	p.logger.Info(ctx, "Build complete",
		"compiled", metrics.Compiled,
		"cache_hits", metrics.CacheHits,
		"failed", metrics.Failed,
		"duration", metrics.Duration.String(),
	)
	return metrics
}

// Get returns the compiled template for a registered name, compiling on
// demand when the cache misses.
func (p *Pipeline) Get(ctx context.Context, name string) (*templao.Template, error) {
	info, ok := p.registry.Get(name)
	if !ok {
		return nil, errors.TemplateNotFound(name, p.registry.Names())
	}
	tpl, _, err := p.build(ctx, info)
	return tpl, err
}

// Build compiles one registered template by name.
func (p *Pipeline) Build(ctx context.Context, name string) error {
	_, err := p.Get(ctx, name)
	return err
}

// build compiles an entry, consulting the cache by content hash and
// updating the registry metadata the compilation reveals.
func (p *Pipeline) build(ctx context.Context, info *registry.TemplateInfo) (*templao.Template, bool, error) {
	content, err := os.ReadFile(info.FilePath)
	if err != nil {
		e := errors.NewIOError("READ_FAILED", "cannot read template file", err).WithFile(info.FilePath)
		p.logger.Error(ctx, e, "Template read failed", "template", info.Name)
		return nil, false, e
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:8])
	if tpl, ok := p.cache.Get(hash); ok {
		return tpl, true, nil
	}

	src, err := htmltree.ParseFragment(string(content))
	if err != nil {
		e := errors.NewCompileError(info.Name, "cannot parse template fragment", err).WithFile(info.FilePath)
		p.logger.Error(ctx, e, "Template parse failed")
		return nil, false, e
	}
	tpl := templao.Compile(src)

	p.cache.Put(hash, tpl)
	p.registry.Register(&registry.TemplateInfo{
		Name:      info.Name,
		FilePath:  info.FilePath,
		Hash:      hash,
		LastMod:   info.LastMod,
		Keys:      tpl.Keys(),
		PartCount: tpl.PartCount(),
	})
	p.logger.Debug(ctx, "Compiled template", "template", info.Name, "parts", tpl.PartCount())
	return tpl, false, nil
}
