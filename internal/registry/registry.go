// Package registry holds the live set of ServiceDefinitions a router
// knows about and notifies listeners (the KeywordMatcher, primarily) when
// that set changes.
//
// Each Register/Deregister call's mutation and notification run as one
// unit under notifyMu, so a listener can never observe a deregister out
// of order with a register of the same id. A listener must not re-enter
// the registry (register/deregister) from within its own callback, since
// that call would block on notifyMu until the outer call returns —
// callers that need that should defer the follow-up call.
package registry

import (
	"sync"

	"github.com/relaymesh/switchboard/pkg/models"
)

// Listener receives notifications when the registry's service set changes.
// OnRegister fires after a definition is added or replaced; OnDeregister
// fires after a definition is removed. Implementations must not call back
// into the Registry that invoked them (see package doc).
type Listener interface {
	OnRegister(def models.ServiceDefinition)
	OnDeregister(id string)
}

// Registry holds ServiceDefinitions keyed by id, in insertion order, and
// notifies Listeners of changes. Zero value is not usable; use New.
type Registry struct {
	mu sync.Mutex // guards byID/order/listeners

	// notifyMu serializes each Register/Deregister call's full
	// mutate-then-notify sequence against every other such call, so that
	// listeners never observe a register and a deregister of the same id
	// out of the order the calls were made in: one call's notifications
	// complete in full before the next call's mutation is even applied.
	notifyMu sync.Mutex

	byID      map[string]models.ServiceDefinition
	order     []string // insertion order of ids currently present
	listeners []Listener
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byID: make(map[string]models.ServiceDefinition),
	}
}

// AddListener registers a Listener for future Register/Deregister events.
// It does not replay existing definitions; callers that need the current
// state should call List() before or after adding a listener as their
// ordering requirements dictate.
func (r *Registry) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Register adds a new definition or replaces an existing one with the same
// id, preserving that id's original position in iteration order. Fires
// OnRegister on all listeners. The mutation and the notification run under
// notifyMu, serialized against every other Register/Deregister call, so
// that for a given id, every listener observes a register before any
// listener observes a subsequent deregister of that id.
func (r *Registry) Register(def models.ServiceDefinition) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if _, exists := r.byID[def.ID]; !exists {
		r.order = append(r.order, def.ID)
	}
	r.byID[def.ID] = def
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()

	for _, l := range listeners {
		l.OnRegister(def)
	}
}

// Deregister removes a definition by id, if present, and fires
// OnDeregister on all listeners. Deregistering an unknown id is a no-op.
// Like Register, the mutation and notification run under notifyMu.
func (r *Registry) Deregister(id string) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if _, exists := r.byID[id]; !exists {
		r.mu.Unlock()
		return
	}
	delete(r.byID, id)
	for i, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()

	for _, l := range listeners {
		l.OnDeregister(id)
	}
}

// Find returns the definition for id and whether it exists.
func (r *Registry) Find(id string) (models.ServiceDefinition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.byID[id]
	return def, ok
}

// List returns all definitions in insertion order. The returned slice is a
// fresh copy; mutating it does not affect the registry.
func (r *Registry) List() []models.ServiceDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ServiceDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
