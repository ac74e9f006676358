package item

import (
	"fmt"
	"strings"
	"sync"
)

// Registry indexes item types by name.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Type
	order  []*Type
}

// NewRegistry returns a registry pre-populated with the given types.
func NewRegistry(types ...*Type) *Registry {
	r := &Registry{byName: make(map[string]*Type)}
	for _, t := range types {
		_ = r.Register(t)
	}
	return r
}

// Register adds a type. Registering a name twice is an error.
func (r *Registry) Register(t *Type) error {
	if t == nil {
		return ErrNilType
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[t.Name]; exists {
		return fmt.Errorf("item type %q already registered", t.Name)
	}
	r.byName[t.Name] = t
	r.order = append(r.order, t)
	return nil
}

// ByName looks a type up by bare or namespaced name.
func (r *Registry) ByName(name string) (*Type, bool) {
	name = strings.TrimPrefix(name, "minecraft:")

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// All returns the registered types in registration order.
func (r *Registry) All() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
