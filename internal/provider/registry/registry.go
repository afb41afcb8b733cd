package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/davidbz/markl/internal/domain"
)

// Registry implements the ProviderRegistry interface as a lookup table keyed by provider.
// Adding a provider means registering one more adapter; dispatch never branches on names.
type Registry struct {
	mu       sync.RWMutex
	adapters map[domain.ProviderID]domain.ProviderAdapter
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:       sync.RWMutex{},
		adapters: make(map[domain.ProviderID]domain.ProviderAdapter),
	}
}

// Register adds an adapter to the registry.
func (r *Registry) Register(_ context.Context, adapter domain.ProviderAdapter) error {
	if adapter == nil {
		return errors.New("adapter cannot be nil")
	}

	name := adapter.Name()
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.adapters[name] = adapter

	return nil
}

// Get retrieves an adapter by provider.
func (r *Registry) Get(_ context.Context, provider domain.ProviderID) (domain.ProviderAdapter, error) {
	if provider == "" {
		return nil, &domain.ValidationError{Field: "provider", Message: "provider cannot be empty"}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[provider]
	if !exists {
		return nil, &domain.UnsupportedProviderError{Provider: string(provider)}
	}

	return adapter, nil
}

// List returns all registered providers, sorted.
func (r *Registry) List(_ context.Context) ([]domain.ProviderID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]domain.ProviderID, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names, nil
}
