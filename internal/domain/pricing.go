package domain

import "context"

// ModelPricing contains per-model pricing and limits.
type ModelPricing struct {
	Model           string  // model identifier
	InputCostPer1M  float64 // USD per 1M input tokens
	OutputCostPer1M float64 // USD per 1M output tokens
	ContextWindow   int     // max input+output tokens
}

// MeanCostPer1M is the cost-efficiency key used to rank models.
func (p ModelPricing) MeanCostPer1M() float64 {
	return (p.InputCostPer1M + p.OutputCostPer1M) / 2
}

// PricingRegistry maintains pricing information for provider models.
type PricingRegistry interface {
	// GetPricing returns pricing for a provider model.
	GetPricing(ctx context.Context, provider ProviderID, model string) (ModelPricing, error)

	// RegisterPricing adds pricing for a provider model.
	RegisterPricing(ctx context.Context, provider ProviderID, pricing ModelPricing) error

	// ListPricing returns all priced models of a provider sorted by model id.
	ListPricing(ctx context.Context, provider ProviderID) []ModelPricing

	// Providers returns every provider with at least one priced model, sorted.
	Providers(ctx context.Context) []ProviderID
}
