package component

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps identifiers to live components. It owns the instances;
// parents only ever refer to children by ID.
type Registry struct {
	mu         sync.RWMutex
	next       ID
	components map[ID]Component
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[ID]Component)}
}

// Register allocates an ID, builds the component with it and records the
// result. The component's root node is tagged with the component as owner.
func (r *Registry) Register(build func(id ID) Component) Component {
	r.mu.Lock()
	r.next++
	id := r.next
	r.mu.Unlock()

	c := build(id)
	if c.ID() != id {
		panic(fmt.Sprintf("component: built component reports id %v, allocated %v", c.ID(), id))
	}
	if n := c.Node(); n != nil {
		n.SetOwner(c)
	}

	r.mu.Lock()
	r.components[id] = c
	r.mu.Unlock()
	return c
}

// Resolve returns the live component for id.
func (r *Registry) Resolve(id ID) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[id]
	return c, ok
}

// MustResolve is like Resolve but returns an error wrapping ErrUnknownID.
func (r *Registry) MustResolve(id ID) (Component, error) {
	if c, ok := r.Resolve(id); ok {
		return c, nil
	}
	return nil, fmt.Errorf("resolve %v: %w", id, ErrUnknownID)
}

// Unregister destroys the component: it is detached from the tree, notified
// through Destroyer, and its ID stops resolving. Unknown IDs are ignored.
func (r *Registry) Unregister(id ID) {
	r.mu.Lock()
	c, ok := r.components[id]
	delete(r.components, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	if n := c.Node(); n != nil {
		n.Remove()
	}
	if d, ok := c.(Destroyer); ok {
		d.Destroy()
	}
}

// Len returns the number of live components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}

// IDs returns the live identifiers in ascending order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	ids := make([]ID, 0, len(r.components))
	for id := range r.components {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Reconcile runs one reconciliation pass. fn receives a fresh latent set;
// every component still latent when fn returns is destroyed. The error from
// fn is returned after cleanup.
func (r *Registry) Reconcile(fn func(latent *LatentSet) error) error {
	latent := NewLatentSet()
	err := fn(latent)
	for _, id := range latent.IDs() {
		r.Unregister(id)
	}
	return err
}
