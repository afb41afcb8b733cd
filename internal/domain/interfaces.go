package domain

import "context"

// ProviderAdapter translates a normalized request into one provider's wire format.
// Implementations are stateless, never retry, and are safe for concurrent use.
type ProviderAdapter interface {
	// Invoke sends messages to the provider and returns the reply text.
	Invoke(ctx context.Context, apiKey, model string, messages []Message, maxTokens int) (string, error)

	// Name returns the provider identifier.
	Name() ProviderID
}

// ProviderRegistry is the lookup table of adapters keyed by provider.
type ProviderRegistry interface {
	// Register adds an adapter to the registry.
	Register(ctx context.Context, adapter ProviderAdapter) error

	// Get retrieves an adapter by provider.
	Get(ctx context.Context, provider ProviderID) (ProviderAdapter, error)

	// List returns all registered providers, sorted.
	List(ctx context.Context) ([]ProviderID, error)
}

// EventPublisher publishes named signals to listeners.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

// NopUsageRecorder discards events. Used by one-shot CLI commands.
type NopUsageRecorder struct{}

// Record returns the event unchanged.
func (NopUsageRecorder) Record(_ context.Context, event UsageEvent) UsageEvent { return event }

// UsageRecorder observes tracked operations.
type UsageRecorder interface {
	// Record stores the event and returns it with generated id and timestamp.
	Record(ctx context.Context, event UsageEvent) UsageEvent
}

// Router resolves which adapter and model serve a request.
type Router interface {
	// Route validates the provider/model pair and fills in a default model when empty.
	Route(ctx context.Context, req *RouteRequest) (*Route, error)
}

// RouteRequest contains criteria for provider selection.
type RouteRequest struct {
	Provider ProviderID
	Model    string

	// AllowUnknownModel passes models without pricing through unchanged (raw chat passthrough).
	AllowUnknownModel bool
}

// Route is a resolved provider adapter and concrete model.
type Route struct {
	Adapter ProviderAdapter
	Model   string
}

// KeyValueStore persists opaque JSON blobs under fixed keys.
type KeyValueStore interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
