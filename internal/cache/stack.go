// Package cache keeps live item stacks in memory so command handlers avoid a
// storage round trip on every call.
package cache

import (
	"sync"

	"github.com/google/uuid"

	"github.com/itsmeow/SpongeCommon/internal/item"
)

// StackCache maps stack IDs to live stacks. Get hands out copies; cached
// stacks are only mutated through Update.
type StackCache struct {
	mu     sync.Mutex
	stacks map[uuid.UUID]*item.Stack
}

func NewStackCache() *StackCache {
	return &StackCache{stacks: make(map[uuid.UUID]*item.Stack)}
}

// Get returns a copy of the cached stack.
func (c *StackCache) Get(id uuid.UUID) (*item.Stack, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stacks[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Put stores a stack, replacing any previous one with the same ID.
func (c *StackCache) Put(s *item.Stack) {
	if s == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stacks[s.ID] = s
}

// Update runs fn on the cached stack under the cache lock and returns a copy
// of the result. It reports false when the stack is not cached.
func (c *StackCache) Update(id uuid.UUID, fn func(*item.Stack) error) (*item.Stack, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stacks[id]
	if !ok {
		return nil, false, nil
	}
	if err := fn(s); err != nil {
		return nil, true, err
	}
	return s.Clone(), true, nil
}

func (c *StackCache) Delete(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stacks, id)
}

func (c *StackCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stacks)
}

// Reset drops every cached stack.
func (c *StackCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stacks = make(map[uuid.UUID]*item.Stack)
}
