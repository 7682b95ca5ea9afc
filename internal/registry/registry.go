// Package registry tracks all discovered templates and fans template
// events out to watchers.
package registry

import (
	"sync"
	"time"
)

// TemplateRegistry manages all discovered templates.
type TemplateRegistry struct {
	templates map[string]*TemplateInfo
	mutex     sync.RWMutex
	watchers  []chan TemplateEvent
}

// TemplateInfo holds metadata about a discovered template file.
type TemplateInfo struct {
	Name     string
	FilePath string
	Hash     string
	LastMod  time.Time
	// Keys and PartCount are filled in by the build pipeline once the
	// template has compiled.
	Keys      []string
	PartCount int
}

// TemplateEvent represents a change in the template registry.
type TemplateEvent struct {
	Type      EventType
	Template  *TemplateInfo
	Timestamp time.Time
}

// EventType represents the type of template event.
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// NewTemplateRegistry creates a new template registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]*TemplateInfo),
		watchers:  make([]chan TemplateEvent, 0),
	}
}

// Register adds or updates a template in the registry.
func (r *TemplateRegistry) Register(info *TemplateInfo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.templates[info.Name]; exists {
		eventType = EventTypeUpdated
	}

	r.templates[info.Name] = info

	r.notify(TemplateEvent{
		Type:      eventType,
		Template:  info,
		Timestamp: time.Now(),
	})
}

// Get retrieves a template by name.
func (r *TemplateRegistry) Get(name string) (*TemplateInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	info, exists := r.templates[name]
	return info, exists
}

// GetAll returns all registered templates.
func (r *TemplateRegistry) GetAll() map[string]*TemplateInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*TemplateInfo, len(r.templates))
	for name, info := range r.templates {
		result[name] = info
	}
	return result
}

// Names returns all registered template names.
func (r *TemplateRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

// Remove removes a template from the registry.
func (r *TemplateRegistry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	info, exists := r.templates[name]
	if !exists {
		return
	}

	delete(r.templates, name)

	r.notify(TemplateEvent{
		Type:      EventTypeRemoved,
		Template:  info,
		Timestamp: time.Now(),
	})
}

// Watch returns a channel that receives template events.
func (r *TemplateRegistry) Watch() <-chan TemplateEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan TemplateEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it.
func (r *TemplateRegistry) UnWatch(ch <-chan TemplateEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered templates.
func (r *TemplateRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.templates)
}

// notify fans an event out without blocking on slow watchers. Callers
// hold the write lock.
func (r *TemplateRegistry) notify(event TemplateEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
