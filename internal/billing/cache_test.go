package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutar-app/backend/internal/billing"
)

func newCacheClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisRecordCache(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		_, client := newCacheClient(t)
		cache := billing.NewRedisRecordCache(client, time.Minute)

		rec := &billing.Record{
			ID:                "sub-1",
			Kind:              billing.KindSubscription,
			Status:            "approved",
			ExternalReference: "a@x.com",
			Reason:            "RutAR PRO Black",
			Amount:            9999,
		}
		cache.Set(context.Background(), "subscription:sub-1", rec)

		got, ok := cache.Get(context.Background(), "subscription:sub-1")
		require.True(t, ok)
		assert.Equal(t, rec, got)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		t.Parallel()

		_, client := newCacheClient(t)
		cache := billing.NewRedisRecordCache(client, time.Minute)

		_, ok := cache.Get(context.Background(), "payment:missing")
		assert.False(t, ok)
	})

	t.Run("entries expire after the ttl", func(t *testing.T) {
		t.Parallel()

		mr, client := newCacheClient(t)
		cache := billing.NewRedisRecordCache(client, time.Minute)

		cache.Set(context.Background(), "payment:pay-1", &billing.Record{ID: "pay-1"})
		mr.FastForward(2 * time.Minute)

		_, ok := cache.Get(context.Background(), "payment:pay-1")
		assert.False(t, ok)
	})

	t.Run("redis outage degrades to a miss", func(t *testing.T) {
		t.Parallel()

		mr, client := newCacheClient(t)
		cache := billing.NewRedisRecordCache(client, time.Minute)
		mr.Close()

		cache.Set(context.Background(), "payment:pay-2", &billing.Record{ID: "pay-2"})
		_, ok := cache.Get(context.Background(), "payment:pay-2")
		assert.False(t, ok)
	})
}
