package securestore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisKVRoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	kv := NewRedisKV(client, "test:securestore:")
	store := New(kv, RandomKey())

	require.NoError(t, store.SetItemFor(ctx, "draft", map[string]int{"guests": 2}, time.Minute))
	t.Cleanup(func() { _ = store.RemoveItem(ctx, "draft") })

	ttl, err := client.TTL(ctx, "test:securestore:draft").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	var got map[string]int
	require.True(t, store.GetItem(ctx, "draft", &got))
	assert.Equal(t, 2, got["guests"])

	require.NoError(t, kv.Set(ctx, "draft_integrity", "tampered", time.Minute))
	assert.False(t, store.GetItem(ctx, "draft", &got))

	_, ok, err := kv.Get(ctx, "draft")
	require.NoError(t, err)
	assert.False(t, ok)
}
