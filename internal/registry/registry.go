package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/agentx-labs/exthost/internal/registration"
)

// Key identifies an entry. Name is the namespaced name, e.g. "acme.query".
type Key struct {
	Kind registration.Kind
	Name string
}

func (k Key) String() string { return k.Kind.String() + ":" + k.Name }

// Entry is a registered contribution.
type Entry struct {
	ExtensionID string                `json:"extensionId"`
	Kind        registration.Kind     `json:"kind"`
	Name        string                `json:"name"`
	Route       string                `json:"route,omitempty"`
	Metadata    registration.Metadata `json:"metadata"`
	// Payload is the handler as registered, including any auth wrapper.
	Payload      any       `json:"-"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Key returns the entry's registry key.
func (e Entry) Key() Key { return Key{Kind: e.Kind, Name: e.Name} }

// DuplicateError is returned by Record when a key is already taken.
type DuplicateError struct {
	Key      Key
	Owner    string
	Incoming string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("registry: %s %q from extension %s is already registered by %s",
		e.Key.Kind.Label(), e.Key.Name, e.Incoming, e.Owner)
}

// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]Entry
	order   []Key
	now     func() time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[Key]Entry), now: time.Now}
}

// Record adds entries all-or-nothing: if any key is taken, or repeated
// within the batch, nothing is recorded.
func (r *Registry) Record(entries ...Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[Key]string, len(entries))
	for _, e := range entries {
		k := e.Key()
		if existing, ok := r.entries[k]; ok {
			return &DuplicateError{Key: k, Owner: existing.ExtensionID, Incoming: e.ExtensionID}
		}
		if owner, ok := batch[k]; ok {
			return &DuplicateError{Key: k, Owner: owner, Incoming: e.ExtensionID}
		}
		batch[k] = e.ExtensionID
	}

	now := r.now()
	for _, e := range entries {
		if e.RegisteredAt.IsZero() {
			e.RegisteredAt = now
		}
		k := e.Key()
		r.entries[k] = e
		r.order = append(r.order, k)
	}
	return nil
}

// Remove drops every entry owned by extensionID and returns how many were
// removed.
func (r *Registry) Remove(extensionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	removed := 0
	for _, k := range r.order {
		if r.entries[k].ExtensionID == extensionID {
			delete(r.entries, k)
			removed++
			continue
		}
		kept = append(kept, k)
	}
	r.order = kept
	return removed
}

// Get returns the entry registered under kind and name.
func (r *Registry) Get(kind registration.Kind, name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[Key{Kind: kind, Name: name}]
	return e, ok
}

// List returns the entries of kind in registration order.
func (r *Registry) List(kind registration.Kind) []Entry {
	return r.filter(func(e Entry) bool { return e.Kind == kind })
}

// ForExtension returns the entries owned by extensionID in registration
// order.
func (r *Registry) ForExtension(extensionID string) []Entry {
	return r.filter(func(e Entry) bool { return e.ExtensionID == extensionID })
}

// All returns every entry in registration order.
func (r *Registry) All() []Entry {
	return r.filter(func(Entry) bool { return true })
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) filter(keep func(Entry) bool) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.order))
	for _, k := range r.order {
		if e := r.entries[k]; keep(e) {
			out = append(out, e)
		}
	}
	return out
}
