package variant

import (
	"fmt"
	"sort"
	"sync"
)

// Registry owns one Resolver per raw name, so translation handles are shared
// by every caller asking for the same variant.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]*Resolver
	opts      []Option
}

// NewRegistry builds resolvers for every source.
func NewRegistry(sources []Source, opts ...Option) (*Registry, error) {
	r := &Registry{resolvers: make(map[string]*Resolver, len(sources)), opts: opts}
	for _, src := range sources {
		if _, err := r.Add(src); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers src and returns its resolver.
func (r *Registry) Add(src Source) (*Resolver, error) {
	res, err := NewResolver(src, r.opts...)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resolvers[src.RawName()]; exists {
		return nil, fmt.Errorf("%w: duplicate raw name %q", ErrInvalidVariant, src.RawName())
	}
	r.resolvers[src.RawName()] = res
	return res, nil
}

// Get returns the resolver for a raw name.
func (r *Registry) Get(rawName string) (*Resolver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resolvers[rawName]
	return res, ok
}

// All returns every resolver sorted by identifier.
func (r *Registry) All() []*Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Resolver, 0, len(r.resolvers))
	for _, res := range r.resolvers {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// CachedCount returns how many resolvers have built their translation.
func (r *Registry) CachedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, res := range r.resolvers {
		if res.Cached() {
			n++
		}
	}
	return n
}

// Len returns the number of registered variants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resolvers)
}
