package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davidbz/markl/internal/observability"
)

const (
	// DefaultChatMaxTokens applies when a chat request omits maxTokens.
	DefaultChatMaxTokens = 500

	testConnectionPrompt    = "Hello! Please respond with a short greeting to confirm the connection works."
	testConnectionMaxTokens = 50
)

// ChatRequest is a raw provider passthrough request.
// Presence of provider, apiKey and messages is checked by GatewayService.Chat.
type ChatRequest struct {
	Provider  ProviderID `json:"provider"`
	APIKey    string     `json:"apiKey"`
	Model     string     `json:"model"`
	Messages  []Message  `json:"messages"  validate:"dive"`
	MaxTokens int        `json:"maxTokens" validate:"gte=0"`
}

// ConnectionResult is the outcome of one connection test.
type ConnectionResult struct {
	Provider  ProviderID `json:"provider"`
	Model     string     `json:"model,omitempty"`
	Success   bool       `json:"success"`
	Response  string     `json:"response,omitempty"`
	Error     string     `json:"error,omitempty"`
	ErrorType ErrorType  `json:"errorType,omitempty"`
}

// GatewayService handles chat passthrough, connection tests and tracked cost estimates.
type GatewayService struct {
	router    Router
	estimator *CostEstimator
	recorder  UsageRecorder
	now       func() time.Time
}

// NewGatewayService creates a new gateway service (DI constructor).
func NewGatewayService(router Router, estimator *CostEstimator, recorder UsageRecorder) *GatewayService {
	return &GatewayService{
		router:    router,
		estimator: estimator,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Chat forwards messages to a provider and returns the reply text.
func (g *GatewayService) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	if req == nil {
		return "", &ValidationError{Field: "request", Message: "request cannot be nil"}
	}

	if req.Provider == "" || req.APIKey == "" || req.Messages == nil {
		return "", &ValidationError{Message: "provider, apiKey, and messages are required"}
	}

	route, err := g.router.Route(ctx, &RouteRequest{
		Provider:          req.Provider,
		Model:             req.Model,
		AllowUnknownModel: true,
	})
	if err != nil {
		return "", err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultChatMaxTokens
	}

	ctx = observability.WithModel(observability.WithProvider(ctx, string(req.Provider)), route.Model)
	observability.FromContext(ctx).Info("forwarding chat request",
		observability.Int("messages", len(req.Messages)),
		observability.Int("max_tokens", maxTokens))

	content, err := route.Adapter.Invoke(ctx, req.APIKey, route.Model, req.Messages, maxTokens)
	if err != nil {
		return "", fmt.Errorf("chat failed: %w", err)
	}

	return content, nil
}

// TestConnection sends a short probe to the provider's default model and records the attempt.
func (g *GatewayService) TestConnection(ctx context.Context, provider ProviderID, apiKey string) ConnectionResult {
	start := g.now()
	ctx = observability.WithOperation(observability.WithProvider(ctx, string(provider)), string(OperationTestConnection))
	logger := observability.FromContext(ctx)

	result := ConnectionResult{Provider: provider}

	response, model, err := g.probe(ctx, provider, apiKey)
	result.Model = model

	event := UsageEvent{
		Provider:         provider,
		Model:            model,
		Operation:        OperationTestConnection,
		ProcessingTimeMs: g.now().Sub(start).Milliseconds(),
		Success:          err == nil,
	}

	if err != nil {
		logger.Warn("connection test failed", observability.Error(err))
		result.Error = err.Error()
		result.ErrorType = ClassifyError(err)
		event.ErrorType = result.ErrorType
	} else {
		result.Success = true
		result.Response = response
		event.TokensUsed = EstimateTokens(testConnectionPrompt) + EstimateTokens(response)
		if cost, ok := g.estimator.CostForTokens(ctx, provider, model,
			EstimateTokens(testConnectionPrompt), EstimateTokens(response)); ok {
			event.EstimatedCost = cost
		}
	}

	g.recorder.Record(context.WithoutCancel(ctx), event)
	return result
}

// TestAll tests every provider a key was supplied for, concurrently. Results are sorted by provider.
func (g *GatewayService) TestAll(ctx context.Context, apiKeys map[ProviderID]string) []ConnectionResult {
	providers := make([]ProviderID, 0, len(apiKeys))
	for provider, key := range apiKeys {
		if key != "" {
			providers = append(providers, provider)
		}
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })

	results := make([]ConnectionResult, len(providers))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, provider := range providers {
		group.Go(func() error {
			results[i] = g.TestConnection(groupCtx, provider, apiKeys[provider])
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// EstimateCost estimates an enhancement and records a cost_estimation event.
// Unknown provider/model pairs degrade to "no estimate" rather than an error.
func (g *GatewayService) EstimateCost(ctx context.Context, req EstimateRequest) (CostEstimate, bool) {
	start := g.now()
	estimate, ok := g.estimator.EstimateEnhancementCost(ctx, req)

	event := UsageEvent{
		Provider:         req.Provider,
		Model:            req.Model,
		Operation:        OperationCostEstimation,
		ProcessingTimeMs: g.now().Sub(start).Milliseconds(),
		Success:          ok,
		EnhancementLevel: req.Level,
	}
	if !ok {
		event.ErrorType = ErrorTypeUnsupportedModel
	}
	g.recorder.Record(context.WithoutCancel(ctx), event)

	return estimate, ok
}

func (g *GatewayService) probe(ctx context.Context, provider ProviderID, apiKey string) (string, string, error) {
	if apiKey == "" {
		return "", "", &ValidationError{Message: "provider and apiKey are required"}
	}

	route, err := g.router.Route(ctx, &RouteRequest{Provider: provider})
	if err != nil {
		return "", "", err
	}

	response, err := route.Adapter.Invoke(ctx, apiKey, route.Model,
		[]Message{{Role: RoleUser, Content: testConnectionPrompt}}, testConnectionMaxTokens)
	if err != nil {
		return "", route.Model, err
	}
	if response == "" {
		return "", route.Model, errors.New("provider returned an empty response")
	}

	return response, route.Model, nil
}
