package redisstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/oauthconnect/go-oauth-connect/session/redisstore"
)

// The suite needs a live Redis; point REDIS_ADDR at one to run it.
func setupStore(t *testing.T) *redisstore.Store {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	store := redisstore.New(context.Background(), client, uuid.New().String(),
		redisstore.WithTTL(time.Minute))
	t.Cleanup(store.ClearAll)
	return store
}

func TestRoundTrip(t *testing.T) {
	store := setupStore(t)

	_, ok := store.Get("code")
	require.False(t, ok)

	store.Set("code", "abc")
	value, ok := store.Get("code")
	require.True(t, ok)
	require.Equal(t, "abc", value)

	store.Delete("code")
	_, ok = store.Get("code")
	require.False(t, ok)
}

func TestClearAllDropsTheWholeSession(t *testing.T) {
	store := setupStore(t)

	store.Set("code", "abc")
	store.Set("state", "xyz")

	store.ClearAll()

	_, ok := store.Get("code")
	require.False(t, ok)
	_, ok = store.Get("state")
	require.False(t, ok)
}
