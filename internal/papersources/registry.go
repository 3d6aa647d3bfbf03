package papersources

import (
	"sync"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// Registry holds metadata sources keyed by source type.
// It provides thread-safe registration and lookup.
type Registry struct {
	mu      sync.RWMutex
	sources map[domain.SourceType]MetadataSource
}

// NewRegistry creates a new source registry with an empty source map.
func NewRegistry(sources ...MetadataSource) *Registry {
	r := &Registry{
		sources: make(map[domain.SourceType]MetadataSource),
	}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds a source to the registry.
// If a source with the same type already exists, it will be replaced.
func (r *Registry) Register(source MetadataSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.SourceType()] = source
}

// Get returns a source by type, or nil if not found.
func (r *Registry) Get(sourceType domain.SourceType) MetadataSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[sourceType]
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}
