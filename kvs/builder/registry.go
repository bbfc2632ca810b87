package builder

import (
	"sync"

	"github.com/jrife/kvstore/kvs"
)

// Registry caches live store instances by id so that components within a
// process share one instance per id instead of racing on the same files.
// The registry takes no part in instance locking: concurrency semantics
// come from the instances themselves.
type Registry struct {
	mu        sync.Mutex
	instances map[kvs.InstanceID]*kvs.Kvs
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{instances: map[kvs.InstanceID]*kvs.Kvs{}}
}

// Get returns the cached instance for the builder's id, opening and
// caching one with the builder's options if none is live yet.
func (registry *Registry) Get(builder *Builder) (*kvs.Kvs, error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if instance, ok := registry.instances[builder.config.InstanceID]; ok {
		return instance, nil
	}

	instance, err := builder.Build()

	if err != nil {
		return nil, err
	}

	registry.instances[builder.config.InstanceID] = instance

	return instance, nil
}

// Remove drops the cached instance for id without closing it
func (registry *Registry) Remove(id kvs.InstanceID) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	delete(registry.instances, id)
}

// Close closes every cached instance and empties the registry. The first
// close error is returned; the sweep continues regardless.
func (registry *Registry) Close() error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	var firstErr error

	for id, instance := range registry.instances {
		if err := instance.Close(); err != nil && firstErr == nil {
			firstErr = err
		}

		delete(registry.instances, id)
	}

	return firstErr
}
