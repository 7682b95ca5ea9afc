package build

import (
	"sync"

	"github.com/isidrok/templao"
)

// CompileCache stores compiled templates keyed by content hash, so a
// rebuild of an unchanged file reuses the previous compilation. Compiled
// templates are immutable, so sharing them across readers is safe.
type CompileCache struct {
	mutex   sync.RWMutex
	entries map[string]*templao.Template
	hits    int
	misses  int
}

// NewCompileCache creates an empty cache.
func NewCompileCache() *CompileCache {
	return &CompileCache{entries: make(map[string]*templao.Template)}
}

// Get returns the cached compilation for a content hash.
func (c *CompileCache) Get(hash string) (*templao.Template, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tpl, ok := c.entries[hash]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return tpl, ok
}

// Put stores a compilation under a content hash.
func (c *CompileCache) Put(hash string, tpl *templao.Template) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[hash] = tpl
}

// Stats returns hit and miss counts since creation.
func (c *CompileCache) Stats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.hits, c.misses
}

// Size returns the number of cached compilations.
func (c *CompileCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}
