package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"

	"github.com/davidbz/markl/internal/catalog"
	"github.com/davidbz/markl/internal/config"
	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/http"
	"github.com/davidbz/markl/internal/http/middleware"
	"github.com/davidbz/markl/internal/modelsdev"
	"github.com/davidbz/markl/internal/observability"
	"github.com/davidbz/markl/internal/provider/anthropic"
	"github.com/davidbz/markl/internal/provider/gemini"
	"github.com/davidbz/markl/internal/provider/openai"
	"github.com/davidbz/markl/internal/provider/registry"
	"github.com/davidbz/markl/internal/review"
	"github.com/davidbz/markl/internal/routing"
	"github.com/davidbz/markl/internal/storage/memory"
	"github.com/davidbz/markl/internal/storage/redis"
	"github.com/davidbz/markl/internal/usage"
)

const (
	storeMemory = "memory"
	storeRedis  = "redis"
)

func buildContainer() (*dig.Container, error) {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		return nil, fmt.Errorf("failed to provide config dependencies: %w", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		return nil, fmt.Errorf("failed to provide logger: %w", err)
	}
	if err := container.Invoke(observability.SetLogger); err != nil {
		return nil, fmt.Errorf("failed to install logger: %w", err)
	}
	if err := container.Provide(observability.NewEventBus); err != nil {
		return nil, fmt.Errorf("failed to provide event bus: %w", err)
	}

	// Model catalogs and pricing
	if err := container.Provide(loadCatalogs); err != nil {
		return nil, fmt.Errorf("failed to provide model catalogs: %w", err)
	}
	if err := container.Provide(newPricingRegistry); err != nil {
		return nil, fmt.Errorf("failed to provide pricing registry: %w", err)
	}

	// Provider adapters
	if err := container.Provide(func(cfg *openai.Config) *openai.Adapter {
		return openai.NewAdapter(*cfg)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide OpenAI adapter: %w", err)
	}
	if err := container.Provide(func(cfg *anthropic.Config) *anthropic.Adapter {
		return anthropic.NewAdapter(*cfg)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide Anthropic adapter: %w", err)
	}
	if err := container.Provide(func(cfg *gemini.Config) *gemini.Adapter {
		return gemini.NewAdapter(*cfg)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide Gemini adapter: %w", err)
	}
	if err := container.Provide(newProviderRegistry); err != nil {
		return nil, fmt.Errorf("failed to provide provider registry: %w", err)
	}
	if err := container.Provide(newRouter); err != nil {
		return nil, fmt.Errorf("failed to provide router: %w", err)
	}

	// Usage tracking
	if err := container.Provide(newUsageStore); err != nil {
		return nil, fmt.Errorf("failed to provide usage store: %w", err)
	}
	if err := container.Provide(func(
		store domain.KeyValueStore,
		bus *observability.EventBus,
		cfg *usage.Config,
	) *usage.Tracker {
		return usage.NewTracker(context.Background(), store, bus, cfg, time.Now)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide usage tracker: %w", err)
	}
	if err := container.Provide(func(tracker *usage.Tracker) domain.UsageRecorder {
		return tracker
	}); err != nil {
		return nil, fmt.Errorf("failed to provide usage recorder: %w", err)
	}

	// Domain Services
	if err := container.Provide(domain.NewCostEstimator); err != nil {
		return nil, fmt.Errorf("failed to provide cost estimator: %w", err)
	}
	if err := container.Provide(domain.NewSuggestionParser); err != nil {
		return nil, fmt.Errorf("failed to provide suggestion parser: %w", err)
	}
	if err := container.Provide(domain.NewGatewayService); err != nil {
		return nil, fmt.Errorf("failed to provide gateway service: %w", err)
	}
	if err := container.Provide(domain.NewEnhancementService); err != nil {
		return nil, fmt.Errorf("failed to provide enhancement service: %w", err)
	}
	if err := container.Provide(func() review.Annotator {
		return review.NewHeuristicAnnotator()
	}); err != nil {
		return nil, fmt.Errorf("failed to provide annotator: %w", err)
	}
	if err := container.Provide(modelsdev.NewClient); err != nil {
		return nil, fmt.Errorf("failed to provide models.dev client: %w", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		return nil, fmt.Errorf("failed to provide middleware chain: %w", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		return nil, fmt.Errorf("failed to provide HTTP handler: %w", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		return nil, fmt.Errorf("failed to provide HTTP server: %w", err)
	}

	return container, nil
}

func loadCatalogs() (catalog.Set, error) {
	loaders := map[domain.ProviderID]func() (*catalog.Catalog, error){
		domain.ProviderOpenAI:    openai.Catalog,
		domain.ProviderAnthropic: anthropic.Catalog,
		domain.ProviderGemini:    gemini.Catalog,
	}

	set := make(catalog.Set, len(loaders))
	for provider, load := range loaders {
		c, err := load()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s catalog: %w", provider, err)
		}
		set[provider] = c
	}

	return set, nil
}

func newPricingRegistry() (domain.PricingRegistry, error) {
	ctx := context.Background()
	pricing := domain.NewInMemoryPricingRegistry()

	for provider, register := range map[domain.ProviderID]func(context.Context, domain.PricingRegistry) error{
		domain.ProviderOpenAI:    openai.RegisterPricing,
		domain.ProviderAnthropic: anthropic.RegisterPricing,
		domain.ProviderGemini:    gemini.RegisterPricing,
	} {
		if err := register(ctx, pricing); err != nil {
			return nil, fmt.Errorf("failed to register %s pricing: %w", provider, err)
		}
	}

	return pricing, nil
}

func newProviderRegistry(
	openaiAdapter *openai.Adapter,
	anthropicAdapter *anthropic.Adapter,
	geminiAdapter *gemini.Adapter,
) (domain.ProviderRegistry, error) {
	ctx := context.Background()
	reg := registry.NewRegistry()

	for _, adapter := range []domain.ProviderAdapter{openaiAdapter, anthropicAdapter, geminiAdapter} {
		if err := reg.Register(ctx, adapter); err != nil {
			return nil, fmt.Errorf("failed to register %s adapter: %w", adapter.Name(), err)
		}
	}

	return reg, nil
}

// newRouter uses catalog defaults unless configuration names another model.
func newRouter(
	reg domain.ProviderRegistry,
	pricing domain.PricingRegistry,
	catalogs catalog.Set,
	cfg *config.Config,
) domain.Router {
	defaults := routing.DefaultModels(catalogs.DefaultModels())

	overrides := map[domain.ProviderID]string{
		domain.ProviderOpenAI:    cfg.OpenAI.DefaultModel,
		domain.ProviderAnthropic: cfg.Anthropic.DefaultModel,
		domain.ProviderGemini:    cfg.Gemini.DefaultModel,
	}
	for provider, model := range overrides {
		if model != "" {
			defaults[provider] = model
		}
	}

	return routing.NewRouter(reg, pricing, defaults)
}

func newUsageStore(cfg *usage.Config, redisCfg *redis.Config) (domain.KeyValueStore, error) {
	switch cfg.Store {
	case "", storeMemory:
		return memory.NewStore(), nil
	case storeRedis:
		store := redis.NewStore(redis.NewClient(redisCfg), redisCfg.KeyPrefix)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			observability.FromContext(ctx).Warn("redis usage store unreachable, persistence will fail until it recovers",
				observability.String("addr", redisCfg.Addr), observability.Error(err))
		}

		return store, nil
	default:
		return nil, fmt.Errorf("unknown usage store %q", cfg.Store)
	}
}
