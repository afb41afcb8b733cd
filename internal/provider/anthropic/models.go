package anthropic

import (
	"context"
	_ "embed"

	"github.com/davidbz/markl/internal/catalog"
	"github.com/davidbz/markl/internal/domain"
)

//go:embed models.yaml
var modelsYAML []byte

// Catalog returns the Anthropic fallback model catalog.
func Catalog() (*catalog.Catalog, error) {
	return catalog.Parse(modelsYAML)
}

// RegisterPricing registers Anthropic model pricing with the registry.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry) error {
	c, err := Catalog()
	if err != nil {
		return err
	}
	return c.RegisterPricing(ctx, registry)
}
