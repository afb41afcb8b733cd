package domain

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	charsPerToken        = 4
	systemPromptOverhead = 500
	formattingOverhead   = 200
	baseOutputTokens     = 1500
	minOutputTokens      = 500
	contextSafetyBuffer  = 100
	tokensPerMillion     = 1_000_000.0
	modelsPerProvider    = 2
)

// levelScale is the output-token multiplier of each level as numerator/10.
//
//nolint:gochecknoglobals // read-only lookup table
var levelScale = map[EnhancementLevel]int{
	LevelLight:         7,
	LevelModerate:      10,
	LevelComprehensive: 15,
}

// EstimateTokens approximates the token count of text as one token per 4 characters, rounded up.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// EstimateRequest describes the text an enhancement would send.
type EstimateRequest struct {
	Provider         ProviderID       `json:"provider"`
	Model            string           `json:"model"`
	OriginalText     string           `json:"originalText"`
	JobDescription   string           `json:"jobDescription,omitempty"`
	UserInstructions string           `json:"userInstructions,omitempty"`
	Level            EnhancementLevel `json:"enhancementLevel" validate:"omitempty,oneof=light moderate comprehensive"`
}

// CostEstimator estimates token counts and cost without network I/O.
type CostEstimator struct {
	pricing PricingRegistry
}

// NewCostEstimator creates a new cost estimator (DI constructor).
func NewCostEstimator(pricing PricingRegistry) *CostEstimator {
	return &CostEstimator{
		pricing: pricing,
	}
}

// IsSupported reports whether the estimator knows the provider/model pair.
func (c *CostEstimator) IsSupported(ctx context.Context, provider ProviderID, model string) bool {
	_, err := c.pricing.GetPricing(ctx, provider, model)
	return err == nil
}

// EstimateEnhancementCost estimates the cost of one enhancement.
// The second return value is false when the provider/model pricing is unknown.
func (c *CostEstimator) EstimateEnhancementCost(ctx context.Context, req EstimateRequest) (CostEstimate, bool) {
	pricing, err := c.pricing.GetPricing(ctx, req.Provider, req.Model)
	if err != nil {
		return CostEstimate{}, false
	}

	return estimate(req.Provider, pricing, req), true
}

// CompareProvidersForRequest estimates the request on the two most cost-efficient models of
// every known provider. The result is sorted by ascending total cost and the cheapest entry
// is marked recommended.
func (c *CostEstimator) CompareProvidersForRequest(ctx context.Context, req EstimateRequest) []CostEstimate {
	var estimates []CostEstimate

	for _, provider := range c.pricing.Providers(ctx) {
		models := c.rankedModels(ctx, provider)
		if len(models) > modelsPerProvider {
			models = models[:modelsPerProvider]
		}

		for _, pricing := range models {
			estimates = append(estimates, estimate(provider, pricing, req))
		}
	}

	sort.SliceStable(estimates, func(i, j int) bool {
		return estimates[i].TotalCost < estimates[j].TotalCost
	})

	if len(estimates) > 0 {
		estimates[0].Recommended = true
	}

	return estimates
}

// MostCostEffectiveModel returns the lowest mean-cost model of a provider.
func (c *CostEstimator) MostCostEffectiveModel(ctx context.Context, provider ProviderID) (ModelPricing, bool) {
	models := c.rankedModels(ctx, provider)
	if len(models) == 0 {
		return ModelPricing{}, false
	}
	return models[0], true
}

// rankedModels returns a provider's models ordered by mean cost, then model id.
func (c *CostEstimator) rankedModels(ctx context.Context, provider ProviderID) []ModelPricing {
	models := c.pricing.ListPricing(ctx, provider)
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].MeanCostPer1M() < models[j].MeanCostPer1M()
	})
	return models
}

func estimate(provider ProviderID, pricing ModelPricing, req EstimateRequest) CostEstimate {
	inputTokens := EstimateTokens(requestContent(req)) + systemPromptOverhead + formattingOverhead
	outputTokens := OutputTokensForLevel(req.Level)

	exceeded := false
	if inputTokens+outputTokens > pricing.ContextWindow {
		exceeded = true
		outputTokens = max(minOutputTokens, pricing.ContextWindow-inputTokens-contextSafetyBuffer)
	}

	inputCost := float64(inputTokens) / tokensPerMillion * pricing.InputCostPer1M
	outputCost := float64(outputTokens) / tokensPerMillion * pricing.OutputCostPer1M

	return CostEstimate{
		InputCost:  inputCost,
		OutputCost: outputCost,
		TotalCost:  inputCost + outputCost,
		Model:      pricing.Model,
		Provider:   provider,
		TokenEstimate: TokenEstimate{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
		},
		WarningsExceededContext: exceeded,
		Recommended:             false,
	}
}

// OutputTokensForLevel scales the output baseline by level, rounding up.
// Unknown levels are treated as moderate.
func OutputTokensForLevel(level EnhancementLevel) int {
	scale, ok := levelScale[level]
	if !ok {
		scale = levelScale[LevelModerate]
	}
	return (baseOutputTokens*scale + 9) / 10
}

func requestContent(req EstimateRequest) string {
	parts := []string{req.OriginalText}
	if req.JobDescription != "" {
		parts = append(parts, req.JobDescription)
	}
	if req.UserInstructions != "" {
		parts = append(parts, req.UserInstructions)
	}
	return strings.Join(parts, "\n")
}

// CostForTokens prices an exact token count. The second return value is false when the
// provider/model pricing is unknown.
func (c *CostEstimator) CostForTokens(
	ctx context.Context,
	provider ProviderID,
	model string,
	inputTokens, outputTokens int,
) (float64, bool) {
	pricing, err := c.pricing.GetPricing(ctx, provider, model)
	if err != nil {
		return 0, false
	}

	return float64(inputTokens)/tokensPerMillion*pricing.InputCostPer1M +
		float64(outputTokens)/tokensPerMillion*pricing.OutputCostPer1M, true
}
