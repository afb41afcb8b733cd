package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/mocks"
	"github.com/davidbz/markl/internal/provider/registry"
	"github.com/davidbz/markl/internal/routing"
)

// newTestRouter registers the adapters and routes with gpt-4o and claude sonnet as defaults.
func newTestRouter(t *testing.T, adapters ...domain.ProviderAdapter) domain.Router {
	t.Helper()

	reg := registry.NewRegistry()
	for _, adapter := range adapters {
		require.NoError(t, reg.Register(context.Background(), adapter))
	}

	return routing.NewRouter(reg, newTestPricing(t), routing.DefaultModels{
		domain.ProviderOpenAI:    "gpt-4o",
		domain.ProviderAnthropic: "claude-3-5-sonnet-20241022",
	})
}

func newMockAdapter(t *testing.T, provider domain.ProviderID) *mocks.MockProviderAdapter {
	t.Helper()

	adapter := mocks.NewMockProviderAdapter(t)
	adapter.EXPECT().Name().Return(provider).Maybe()
	return adapter
}

// recordInto captures every recorded event.
func recordInto(t *testing.T, events *[]domain.UsageEvent) *mocks.MockUsageRecorder {
	t.Helper()

	recorder := mocks.NewMockUsageRecorder(t)
	recorder.EXPECT().Record(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, event domain.UsageEvent) domain.UsageEvent {
			*events = append(*events, event)
			return event
		}).Maybe()
	return recorder
}

func TestGatewayService_Chat(t *testing.T) {
	ctx := context.Background()
	messages := []domain.Message{{Role: domain.RoleUser, Content: "Hi"}}

	t.Run("should forward to the default model with default max tokens", func(t *testing.T) {
		adapter := newMockAdapter(t, domain.ProviderOpenAI)
		adapter.EXPECT().Invoke(mock.Anything, "sk-test", "gpt-4o", messages, domain.DefaultChatMaxTokens).
			Return("Hello!", nil).Once()

		var events []domain.UsageEvent
		pricing := newTestPricing(t)
		gateway := domain.NewGatewayService(newTestRouter(t, adapter), domain.NewCostEstimator(pricing), recordInto(t, &events))

		content, err := gateway.Chat(ctx, &domain.ChatRequest{
			Provider: domain.ProviderOpenAI,
			APIKey:   "sk-test",
			Messages: messages,
		})

		require.NoError(t, err)
		require.Equal(t, "Hello!", content)
		require.Empty(t, events)
	})

	t.Run("should pass unpriced models through", func(t *testing.T) {
		adapter := newMockAdapter(t, domain.ProviderOpenAI)
		adapter.EXPECT().Invoke(mock.Anything, "sk-test", "gpt-5-preview", messages, 64).Return("ok", nil).Once()

		gateway := domain.NewGatewayService(newTestRouter(t, adapter), domain.NewCostEstimator(newTestPricing(t)), domain.NopUsageRecorder{})

		content, err := gateway.Chat(ctx, &domain.ChatRequest{
			Provider:  domain.ProviderOpenAI,
			APIKey:    "sk-test",
			Model:     "gpt-5-preview",
			Messages:  messages,
			MaxTokens: 64,
		})

		require.NoError(t, err)
		require.Equal(t, "ok", content)
	})

	t.Run("should reject missing fields", func(t *testing.T) {
		gateway := domain.NewGatewayService(newTestRouter(t), domain.NewCostEstimator(newTestPricing(t)), domain.NopUsageRecorder{})

		_, err := gateway.Chat(ctx, &domain.ChatRequest{Provider: domain.ProviderOpenAI, Messages: messages})

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Contains(t, err.Error(), "provider, apiKey, and messages are required")
	})

	t.Run("should reject unknown providers", func(t *testing.T) {
		gateway := domain.NewGatewayService(newTestRouter(t), domain.NewCostEstimator(newTestPricing(t)), domain.NopUsageRecorder{})

		_, err := gateway.Chat(ctx, &domain.ChatRequest{Provider: "unknown", APIKey: "k", Messages: messages})

		require.EqualError(t, err, "Unsupported provider: unknown")
		require.Equal(t, 400, domain.HTTPStatus(err))
	})

	t.Run("should wrap provider errors", func(t *testing.T) {
		adapter := newMockAdapter(t, domain.ProviderOpenAI)
		adapter.EXPECT().Invoke(mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", &domain.ProviderHTTPError{Provider: domain.ProviderOpenAI, Status: 429, Body: "slow down"}).Once()

		gateway := domain.NewGatewayService(newTestRouter(t, adapter), domain.NewCostEstimator(newTestPricing(t)), domain.NopUsageRecorder{})

		_, err := gateway.Chat(ctx, &domain.ChatRequest{Provider: domain.ProviderOpenAI, APIKey: "k", Messages: messages})

		var httpErr *domain.ProviderHTTPError
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, 429, httpErr.Status)
		require.Equal(t, 500, domain.HTTPStatus(err))
	})
}

func TestGatewayService_TestConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("should report success and record the probe", func(t *testing.T) {
		adapter := newMockAdapter(t, domain.ProviderAnthropic)
		adapter.EXPECT().Invoke(mock.Anything, "ak", "claude-3-5-sonnet-20241022", mock.Anything, 50).
			Return("Hello there!", nil).Once()

		var events []domain.UsageEvent
		gateway := domain.NewGatewayService(newTestRouter(t, adapter), domain.NewCostEstimator(newTestPricing(t)), recordInto(t, &events))

		result := gateway.TestConnection(ctx, domain.ProviderAnthropic, "ak")

		require.True(t, result.Success)
		require.Equal(t, "Hello there!", result.Response)
		require.Equal(t, "claude-3-5-sonnet-20241022", result.Model)
		require.Empty(t, result.Error)

		require.Len(t, events, 1)
		require.Equal(t, domain.OperationTestConnection, events[0].Operation)
		require.True(t, events[0].Success)
		require.Positive(t, events[0].TokensUsed)
		require.Positive(t, events[0].EstimatedCost)
	})

	t.Run("should classify upstream failures", func(t *testing.T) {
		adapter := newMockAdapter(t, domain.ProviderOpenAI)
		adapter.EXPECT().Invoke(mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", &domain.ProviderHTTPError{Provider: domain.ProviderOpenAI, Status: 401, Body: "bad key"}).Once()

		var events []domain.UsageEvent
		gateway := domain.NewGatewayService(newTestRouter(t, adapter), domain.NewCostEstimator(newTestPricing(t)), recordInto(t, &events))

		result := gateway.TestConnection(ctx, domain.ProviderOpenAI, "bad")

		require.False(t, result.Success)
		require.Equal(t, domain.ErrorTypeProviderHTTP, result.ErrorType)
		require.Contains(t, result.Error, "401")

		require.Len(t, events, 1)
		require.False(t, events[0].Success)
		require.Equal(t, domain.ErrorTypeProviderHTTP, events[0].ErrorType)
	})

	t.Run("should treat an empty reply as a failure", func(t *testing.T) {
		adapter := newMockAdapter(t, domain.ProviderOpenAI)
		adapter.EXPECT().Invoke(mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", nil).Once()

		gateway := domain.NewGatewayService(newTestRouter(t, adapter), domain.NewCostEstimator(newTestPricing(t)), domain.NopUsageRecorder{})

		result := gateway.TestConnection(ctx, domain.ProviderOpenAI, "k")

		require.False(t, result.Success)
		require.Equal(t, domain.ErrorTypeUnknown, result.ErrorType)
	})

	t.Run("should fail unknown providers without calling anything", func(t *testing.T) {
		gateway := domain.NewGatewayService(newTestRouter(t), domain.NewCostEstimator(newTestPricing(t)), domain.NopUsageRecorder{})

		result := gateway.TestConnection(ctx, "unknown", "k")

		require.False(t, result.Success)
		require.Equal(t, domain.ErrorTypeUnsupportedProvider, result.ErrorType)
	})
}

func TestGatewayService_TestAll(t *testing.T) {
	openaiAdapter := newMockAdapter(t, domain.ProviderOpenAI)
	openaiAdapter.EXPECT().Invoke(mock.Anything, "ok-key", mock.Anything, mock.Anything, mock.Anything).Return("hi", nil).Once()

	anthropicAdapter := newMockAdapter(t, domain.ProviderAnthropic)
	anthropicAdapter.EXPECT().Invoke(mock.Anything, "bad-key", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("connection refused")).Once()

	gateway := domain.NewGatewayService(
		newTestRouter(t, openaiAdapter, anthropicAdapter),
		domain.NewCostEstimator(newTestPricing(t)),
		domain.NopUsageRecorder{},
	)

	results := gateway.TestAll(context.Background(), map[domain.ProviderID]string{
		domain.ProviderOpenAI:    "ok-key",
		domain.ProviderAnthropic: "bad-key",
		domain.ProviderGemini:    "",
	})

	require.Len(t, results, 2)
	require.Equal(t, domain.ProviderAnthropic, results[0].Provider)
	require.False(t, results[0].Success)
	require.Equal(t, domain.ProviderOpenAI, results[1].Provider)
	require.True(t, results[1].Success)
}

func TestGatewayService_EstimateCost(t *testing.T) {
	ctx := context.Background()

	var events []domain.UsageEvent
	gateway := domain.NewGatewayService(newTestRouter(t), domain.NewCostEstimator(newTestPricing(t)), recordInto(t, &events))

	estimate, ok := gateway.EstimateCost(ctx, domain.EstimateRequest{
		Provider:     domain.ProviderOpenAI,
		Model:        "gpt-4o-mini",
		OriginalText: "Led a team of five engineers.",
		Level:        domain.LevelLight,
	})
	require.True(t, ok)
	require.Equal(t, "gpt-4o-mini", estimate.Model)
	require.Positive(t, estimate.TotalCost)

	_, ok = gateway.EstimateCost(ctx, domain.EstimateRequest{
		Provider:     domain.ProviderOpenAI,
		Model:        "no-such-model",
		OriginalText: "text",
	})
	require.False(t, ok)

	require.Len(t, events, 2)
	require.Equal(t, domain.OperationCostEstimation, events[0].Operation)
	require.True(t, events[0].Success)
	require.Equal(t, domain.LevelLight, events[0].EnhancementLevel)
	require.False(t, events[1].Success)
	require.Equal(t, domain.ErrorTypeUnsupportedModel, events[1].ErrorType)
}
