// Package lifecycle holds the reset callbacks of every state slice in a session.
package lifecycle

import "sync"

// Registry runs registered reset callbacks together, in registration order.
// A session owns one Registry; tests build their own.
type Registry struct {
	mu        sync.Mutex
	callbacks []entry
}

type entry struct {
	name string
	fn   func()
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds fn under name. Callbacks must be idempotent and touch only
// their own slice.
func (r *Registry) Register(name string, fn func()) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, entry{name: name, fn: fn})
}

// Names lists registered callbacks in order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.callbacks))
	for i, e := range r.callbacks {
		names[i] = e.name
	}
	return names
}

// ResetAll invokes every callback in registration order. The lock is not held
// while callbacks run, so a callback may safely inspect the registry.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	callbacks := make([]entry, len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.mu.Unlock()

	for _, e := range callbacks {
		e.fn()
	}
}
