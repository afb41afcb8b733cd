// Package catalog parses the per-provider model catalogs embedded by each adapter package.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/davidbz/markl/internal/domain"
)

// Model is one catalog entry.
type Model struct {
	ID              string  `yaml:"id"              json:"id"`
	Name            string  `yaml:"name"            json:"name"`
	Description     string  `yaml:"description"     json:"description"`
	Recommended     bool    `yaml:"recommended"     json:"isRecommended,omitempty"`
	Default         bool    `yaml:"default"         json:"-"`
	InputCostPer1M  float64 `yaml:"inputCostPer1M"  json:"-"`
	OutputCostPer1M float64 `yaml:"outputCostPer1M" json:"-"`
	ContextWindow   int     `yaml:"contextWindow"   json:"-"`
}

// Catalog is the model list of a single provider.
type Catalog struct {
	Provider domain.ProviderID `yaml:"provider"`
	Models   []Model           `yaml:"models"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog: %w", err)
	}

	if c.Provider == "" {
		return nil, errors.New("model catalog is missing provider")
	}
	if len(c.Models) == 0 {
		return nil, fmt.Errorf("model catalog for %s has no models", c.Provider)
	}

	seen := make(map[string]struct{}, len(c.Models))
	defaults := 0
	for _, m := range c.Models {
		if m.ID == "" {
			return nil, fmt.Errorf("model catalog for %s has an entry without id", c.Provider)
		}
		if _, dup := seen[m.ID]; dup {
			return nil, fmt.Errorf("model catalog for %s lists %s twice", c.Provider, m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return nil, fmt.Errorf("model catalog for %s marks %d defaults", c.Provider, defaults)
	}

	return &c, nil
}

// DefaultModel returns the entry marked default, or the first entry.
func (c *Catalog) DefaultModel() string {
	for _, m := range c.Models {
		if m.Default {
			return m.ID
		}
	}
	return c.Models[0].ID
}

// Find looks up a model by id.
func (c *Catalog) Find(id string) (Model, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// RegisterPricing loads every priced catalog entry into the pricing registry.
func (c *Catalog) RegisterPricing(ctx context.Context, registry domain.PricingRegistry) error {
	for _, m := range c.Models {
		if m.ContextWindow == 0 {
			continue
		}

		pricing := domain.ModelPricing{
			Model:           m.ID,
			InputCostPer1M:  m.InputCostPer1M,
			OutputCostPer1M: m.OutputCostPer1M,
			ContextWindow:   m.ContextWindow,
		}
		if err := registry.RegisterPricing(ctx, c.Provider, pricing); err != nil {
			return fmt.Errorf("failed to register pricing for model %s: %w", m.ID, err)
		}
	}

	return nil
}

// Set holds the catalogs of every provider.
type Set map[domain.ProviderID]*Catalog

// Models returns the catalog entries of a provider.
func (s Set) Models(provider domain.ProviderID) ([]Model, error) {
	c, ok := s[provider]
	if !ok {
		return nil, &domain.UnsupportedProviderError{Provider: string(provider)}
	}

	models := make([]Model, len(c.Models))
	copy(models, c.Models)
	return models, nil
}

// DefaultModels maps each provider to its catalog default.
func (s Set) DefaultModels() map[domain.ProviderID]string {
	defaults := make(map[domain.ProviderID]string, len(s))
	for provider, c := range s {
		defaults[provider] = c.DefaultModel()
	}
	return defaults
}
