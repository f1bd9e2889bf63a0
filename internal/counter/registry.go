package counter

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrConflict is returned by Create when the name is already registered.
	ErrConflict = errors.New("counter already exists")
	// ErrNotFound is returned by Get and Increment for unknown names.
	ErrNotFound = errors.New("counter does not exist")
)

// Counter is a named hit count as returned to callers.
type Counter struct {
	Name  string `json:"name"`
	Value uint64 `json:"counter"`
}

// Registry maps counter names to values. All operations hold the lock for
// their full check-then-act sequence, so concurrent creates of one name
// cannot both succeed and concurrent increments are never lost.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]uint64)}
}

// List returns every counter sorted by name.
func (r *Registry) List() []Counter {
	r.mu.RLock()
	out := make([]Counter, 0, len(r.counters))
	for name, value := range r.counters {
		out = append(out, Counter{Name: name, Value: value})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Create adds name with value 0.
func (r *Registry) Create(name string) (Counter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.counters[name]; ok {
		return Counter{}, fmt.Errorf("create %q: %w", name, ErrConflict)
	}
	r.counters[name] = 0
	return Counter{Name: name}, nil
}

// Get returns the current value of name.
func (r *Registry) Get(name string) (Counter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.counters[name]
	if !ok {
		return Counter{}, fmt.Errorf("get %q: %w", name, ErrNotFound)
	}
	return Counter{Name: name, Value: value}, nil
}

// Increment adds exactly one to name and returns the new value.
// The value wraps to 0 past math.MaxUint64.
func (r *Registry) Increment(name string) (Counter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.counters[name]
	if !ok {
		return Counter{}, fmt.Errorf("increment %q: %w", name, ErrNotFound)
	}
	value++
	r.counters[name] = value
	return Counter{Name: name, Value: value}, nil
}

// Delete removes name and reports whether it was present.
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.counters[name]; !ok {
		return false
	}
	delete(r.counters, name)
	return true
}

// Len returns the number of counters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.counters)
}

// Reset removes all counters. Test support only; not routed.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = make(map[string]uint64)
}
