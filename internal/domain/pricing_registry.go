package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// InMemoryPricingRegistry stores pricing configs in memory.
type InMemoryPricingRegistry struct {
	mu      sync.RWMutex
	pricing map[ProviderID]map[string]ModelPricing
}

// NewInMemoryPricingRegistry creates a new in-memory pricing registry.
func NewInMemoryPricingRegistry() *InMemoryPricingRegistry {
	return &InMemoryPricingRegistry{
		mu:      sync.RWMutex{},
		pricing: make(map[ProviderID]map[string]ModelPricing),
	}
}

// GetPricing retrieves pricing for a provider model.
func (r *InMemoryPricingRegistry) GetPricing(
	_ context.Context,
	provider ProviderID,
	model string,
) (ModelPricing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pricing, exists := r.pricing[provider][model]
	if !exists {
		return ModelPricing{}, &UnsupportedModelError{Provider: provider, Model: model}
	}

	return pricing, nil
}

// RegisterPricing adds or replaces pricing for a provider model.
func (r *InMemoryPricingRegistry) RegisterPricing(
	_ context.Context,
	provider ProviderID,
	pricing ModelPricing,
) error {
	if provider == "" {
		return errors.New("provider cannot be empty")
	}
	if pricing.Model == "" {
		return errors.New("model cannot be empty")
	}
	if pricing.InputCostPer1M < 0 || pricing.OutputCostPer1M < 0 {
		return fmt.Errorf("negative pricing for model %s", pricing.Model)
	}
	if pricing.ContextWindow <= 0 {
		return fmt.Errorf("context window must be positive for model %s", pricing.Model)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	models, ok := r.pricing[provider]
	if !ok {
		models = make(map[string]ModelPricing)
		r.pricing[provider] = models
	}
	models[pricing.Model] = pricing

	return nil
}

// ListPricing returns all priced models of a provider sorted by model id.
func (r *InMemoryPricingRegistry) ListPricing(_ context.Context, provider ProviderID) []ModelPricing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := r.pricing[provider]
	list := make([]ModelPricing, 0, len(models))
	for _, p := range models {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Model < list[j].Model })

	return list
}

// Providers returns every provider with at least one priced model, sorted.
func (r *InMemoryPricingRegistry) Providers(_ context.Context) []ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]ProviderID, 0, len(r.pricing))
	for provider, models := range r.pricing {
		if len(models) > 0 {
			providers = append(providers, provider)
		}
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })

	return providers
}
