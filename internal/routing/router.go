package routing

import (
	"context"
	"errors"

	"github.com/davidbz/markl/internal/domain"
)

// DefaultModels maps a provider to the model used when a request names none.
type DefaultModels map[domain.ProviderID]string

// SimpleRouter resolves provider adapters and models.
type SimpleRouter struct {
	registry domain.ProviderRegistry
	pricing  domain.PricingRegistry
	defaults DefaultModels
}

// NewRouter creates a new router.
func NewRouter(registry domain.ProviderRegistry, pricing domain.PricingRegistry, defaults DefaultModels) *SimpleRouter {
	if defaults == nil {
		defaults = DefaultModels{}
	}

	return &SimpleRouter{
		registry: registry,
		pricing:  pricing,
		defaults: defaults,
	}
}

// Route selects the adapter for the provider and validates or defaults the model.
func (r *SimpleRouter) Route(ctx context.Context, req *domain.RouteRequest) (*domain.Route, error) {
	if req == nil {
		return nil, errors.New("route request cannot be nil")
	}

	adapter, err := r.registry.Get(ctx, req.Provider)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model, err = r.defaultModel(ctx, req.Provider)
		if err != nil {
			return nil, err
		}
	}

	if !req.AllowUnknownModel {
		if _, err := r.pricing.GetPricing(ctx, req.Provider, model); err != nil {
			return nil, err
		}
	}

	return &domain.Route{Adapter: adapter, Model: model}, nil
}

// defaultModel returns the configured default, falling back to the cheapest priced model.
func (r *SimpleRouter) defaultModel(ctx context.Context, provider domain.ProviderID) (string, error) {
	if model, ok := r.defaults[provider]; ok && model != "" {
		return model, nil
	}

	models := r.pricing.ListPricing(ctx, provider)
	if len(models) == 0 {
		return "", &domain.UnsupportedModelError{Provider: provider, Model: ""}
	}

	cheapest := models[0]
	for _, m := range models[1:] {
		if m.MeanCostPer1M() < cheapest.MeanCostPer1M() {
			cheapest = m
		}
	}

	return cheapest.Model, nil
}
