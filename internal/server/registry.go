package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mj1618/uiloc/internal/element"
)

// registryEntry holds a handle with the time it was last used.
type registryEntry struct {
	handle   *element.Handle
	lastUsed time.Time
}

// Registry keeps the handles returned by find tools so later calls can act
// on them by id. Entries expire ttl after their last use and handles whose
// control is gone are dropped on lookup.
type Registry struct {
	mu      sync.Mutex
	entries map[string]registryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry creates a registry. A ttl of 0 keeps entries until their
// control is disposed.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		entries: make(map[string]registryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores h under name, or under a new random id when name is empty.
func (r *Registry) Put(name string, h *element.Handle) string {
	if name == "" {
		name = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = registryEntry{handle: h, lastUsed: r.now()}
	return name
}

// Get returns the live handle stored under id and refreshes its expiry.
func (r *Registry) Get(id string) (*element.Handle, bool) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok && r.expired(entry) {
		delete(r.entries, id)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	// IsDisposed queries the provider, so it runs outside the registry lock.
	if entry.handle.IsDisposed() {
		r.Remove(id)
		return nil, false
	}

	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		e.lastUsed = r.now()
		r.entries[id] = e
	}
	r.mu.Unlock()
	return entry.handle, true
}

// Remove forgets id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Prune drops expired and disposed entries and returns how many remain.
func (r *Registry) Prune() int {
	r.mu.Lock()
	snapshot := make(map[string]registryEntry, len(r.entries))
	for id, e := range r.entries {
		if r.expired(e) {
			delete(r.entries, id)
			continue
		}
		snapshot[id] = e
	}
	r.mu.Unlock()

	for id, e := range snapshot {
		if e.handle.IsDisposed() {
			r.Remove(id)
		}
	}
	return r.Len()
}

// Len returns the number of stored entries, expired or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear removes every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]registryEntry)
}

func (r *Registry) expired(e registryEntry) bool {
	return r.ttl > 0 && r.now().Sub(e.lastUsed) >= r.ttl
}
