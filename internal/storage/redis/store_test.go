package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/storage/redis"
)

func TestStore_Key(t *testing.T) {
	store := redis.NewStore(goredis.NewClient(&goredis.Options{Addr: "localhost:0"}), "markl:")
	require.Equal(t, "markl:ai_usage_events", store.Key("ai_usage_events"))
}

func TestStore_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Config{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	store := redis.NewStore(client, "test:")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := store.Get(ctx, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrNotFound)

	require.Error(t, store.Set(ctx, "k", []byte("v")))
	require.Error(t, store.Ping(ctx))
}
