package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateRegistry(t *testing.T) {
	reg := NewTemplateRegistry()

	assert.NotNil(t, reg)
	assert.Equal(t, 0, reg.Count())
}

func TestTemplateRegistry_RegisterAndGet(t *testing.T) {
	reg := NewTemplateRegistry()

	info := &TemplateInfo{
		Name:     "button",
		FilePath: "templates/button.html",
		Hash:     "abc123",
		LastMod:  time.Now(),
	}
	reg.Register(info)

	retrieved, exists := reg.Get("button")
	assert.True(t, exists)
	assert.Equal(t, info, retrieved)
	assert.Equal(t, 1, reg.Count())

	all := reg.GetAll()
	assert.Len(t, all, 1)
	assert.Equal(t, info, all["button"])
	assert.Equal(t, []string{"button"}, reg.Names())
}

func TestTemplateRegistry_RegisterUpdates(t *testing.T) {
	reg := NewTemplateRegistry()
	ch := reg.Watch()

	reg.Register(&TemplateInfo{Name: "card", Hash: "v1"})
	reg.Register(&TemplateInfo{Name: "card", Hash: "v2"})

	first := <-ch
	assert.Equal(t, EventTypeAdded, first.Type)
	second := <-ch
	assert.Equal(t, EventTypeUpdated, second.Type)
	assert.Equal(t, "v2", second.Template.Hash)

	assert.Equal(t, 1, reg.Count())
}

func TestTemplateRegistry_Remove(t *testing.T) {
	reg := NewTemplateRegistry()
	reg.Register(&TemplateInfo{Name: "card"})

	ch := reg.Watch()
	reg.Remove("card")

	event := <-ch
	assert.Equal(t, EventTypeRemoved, event.Type)
	assert.Equal(t, "card", event.Template.Name)
	assert.Equal(t, 0, reg.Count())

	_, exists := reg.Get("card")
	assert.False(t, exists)
}

func TestTemplateRegistry_RemoveMissingIsNoop(t *testing.T) {
	reg := NewTemplateRegistry()
	ch := reg.Watch()

	reg.Remove("ghost")

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %v", event)
	default:
	}
}

func TestTemplateRegistry_UnWatchClosesChannel(t *testing.T) {
	reg := NewTemplateRegistry()
	ch := reg.Watch()
	reg.UnWatch(ch)

	_, open := <-ch
	require.False(t, open)

	// Events after UnWatch must not panic.
	reg.Register(&TemplateInfo{Name: "card"})
}
