package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/provider/registry"
)

type stubAdapter struct {
	name domain.ProviderID
}

func (s *stubAdapter) Invoke(_ context.Context, _, _ string, _ []domain.Message, _ int) (string, error) {
	return "ok", nil
}

func (s *stubAdapter) Name() domain.ProviderID {
	return s.name
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register adapter successfully", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()

		err := reg.Register(ctx, &stubAdapter{name: domain.ProviderOpenAI})
		require.NoError(t, err)

		registered, err := reg.Get(ctx, domain.ProviderOpenAI)
		require.NoError(t, err)
		require.Equal(t, domain.ProviderOpenAI, registered.Name())
	})

	t.Run("should return error when adapter is nil", func(t *testing.T) {
		reg := registry.NewRegistry()

		err := reg.Register(context.Background(), nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "adapter cannot be nil")
	})

	t.Run("should return error when provider name is empty", func(t *testing.T) {
		reg := registry.NewRegistry()

		err := reg.Register(context.Background(), &stubAdapter{name: ""})
		require.Error(t, err)
		require.Contains(t, err.Error(), "provider name cannot be empty")
	})

	t.Run("should return error when provider already registered", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()

		require.NoError(t, reg.Register(ctx, &stubAdapter{name: domain.ProviderGemini}))

		err := reg.Register(ctx, &stubAdapter{name: domain.ProviderGemini})
		require.Error(t, err)
		require.Contains(t, err.Error(), "already registered")
	})
}

func TestRegistry_Get(t *testing.T) {
	t.Run("should return validation error when provider is empty", func(t *testing.T) {
		reg := registry.NewRegistry()

		_, err := reg.Get(context.Background(), "")

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("should return unsupported provider error when not found", func(t *testing.T) {
		reg := registry.NewRegistry()

		_, err := reg.Get(context.Background(), "unknown")
		require.EqualError(t, err, "Unsupported provider: unknown")
		require.Equal(t, domain.ErrorTypeUnsupportedProvider, domain.ClassifyError(err))
	})
}

func TestRegistry_List(t *testing.T) {
	reg := registry.NewRegistry()
	ctx := context.Background()

	names, err := reg.List(ctx)
	require.NoError(t, err)
	require.Empty(t, names)

	require.NoError(t, reg.Register(ctx, &stubAdapter{name: domain.ProviderOpenAI}))
	require.NoError(t, reg.Register(ctx, &stubAdapter{name: domain.ProviderAnthropic}))
	require.NoError(t, reg.Register(ctx, &stubAdapter{name: domain.ProviderGemini}))

	names, err = reg.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.ProviderID{
		domain.ProviderAnthropic,
		domain.ProviderGemini,
		domain.ProviderOpenAI,
	}, names)
}
