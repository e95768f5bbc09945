package registry

import (
	"maps"
	"slices"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the global operations for a single application instance.
type Registry struct {
	operations map[string]*Operation
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		operations: make(map[string]*Operation),
	}
}

// Lookup returns the global operation registered under name.
func (r *Registry) Lookup(name string) (*Operation, bool) {
	op, ok := r.operations[name]
	return op, ok
}

// Names returns the registered operation names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.operations))
}
