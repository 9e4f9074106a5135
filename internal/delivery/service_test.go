package delivery_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutar-app/backend/internal/delivery"
	"github.com/rutar-app/backend/internal/user"
)

func TestServiceRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)

	newService := func(store *delivery.MemoryStore, users *user.MemoryStore) *delivery.Service {
		return delivery.NewService(store, users, slog.New(slog.DiscardHandler),
			delivery.WithClock(func() time.Time { return now }))
	}

	t.Run("appends outcome and bumps delivered counter", func(t *testing.T) {
		t.Parallel()

		outcomes := delivery.NewMemoryStore()
		users := user.NewMemoryStore()
		require.NoError(t, users.Insert(context.Background(), &user.User{
			Email:       "a@x.com",
			Entitlement: user.FreeEntitlement(),
		}))

		svc := newService(outcomes, users)
		err := svc.Record(context.Background(), delivery.RecordInput{
			DriverID: "driver-1",
			Email:    "a@x.com",
			Address:  "Calle Falsa 123",
			Lat:      -34.6,
			Lng:      -58.4,
			Result:   delivery.ResultDone,
		})
		require.NoError(t, err)

		got := outcomes.Outcomes()
		require.Len(t, got, 1)
		assert.NotEmpty(t, got[0].ID)
		assert.Equal(t, "driver-1", got[0].DriverID)
		assert.Equal(t, delivery.ResultDone, got[0].Result)
		assert.Equal(t, now, got[0].Timestamp)

		u, err := users.FindByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.Stats.Delivered)
		assert.Equal(t, int64(0), u.Stats.Failed)
	})

	t.Run("anything but done counts as failed", func(t *testing.T) {
		t.Parallel()

		outcomes := delivery.NewMemoryStore()
		users := user.NewMemoryStore()
		require.NoError(t, users.Insert(context.Background(), &user.User{
			Email:       "b@x.com",
			Entitlement: user.FreeEntitlement(),
		}))

		svc := newService(outcomes, users)
		err := svc.Record(context.Background(), delivery.RecordInput{
			DriverID: "driver-1",
			Email:    "b@x.com",
			Result:   delivery.Result("ATTEMPTED"),
		})
		require.NoError(t, err)

		got := outcomes.Outcomes()
		require.Len(t, got, 1)
		assert.Equal(t, delivery.ResultFailed, got[0].Result)

		u, err := users.FindByEmail(context.Background(), "b@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.Stats.Failed)
	})

	t.Run("counters match regardless of email casing", func(t *testing.T) {
		t.Parallel()

		outcomes := delivery.NewMemoryStore()
		users := user.NewMemoryStore()
		require.NoError(t, users.Insert(context.Background(), &user.User{
			Email:       "d@x.com",
			Entitlement: user.FreeEntitlement(),
		}))

		svc := newService(outcomes, users)
		err := svc.Record(context.Background(), delivery.RecordInput{
			DriverID: "driver-5",
			Email:    " D@X.com ",
			Result:   delivery.ResultDone,
		})
		require.NoError(t, err)

		u, err := users.FindByEmail(context.Background(), "d@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.Stats.Delivered)
	})

	t.Run("missing email keeps the outcome without counters", func(t *testing.T) {
		t.Parallel()

		outcomes := delivery.NewMemoryStore()
		svc := newService(outcomes, user.NewMemoryStore())

		err := svc.Record(context.Background(), delivery.RecordInput{
			DriverID: "driver-2",
			Result:   delivery.ResultDone,
		})
		require.NoError(t, err)
		assert.Len(t, outcomes.Outcomes(), 1)
	})

	t.Run("unknown email still records the outcome", func(t *testing.T) {
		t.Parallel()

		outcomes := delivery.NewMemoryStore()
		svc := newService(outcomes, user.NewMemoryStore())

		err := svc.Record(context.Background(), delivery.RecordInput{
			DriverID: "driver-3",
			Email:    "ghost@x.com",
			Result:   delivery.ResultDone,
		})
		require.NoError(t, err)
		assert.Len(t, outcomes.Outcomes(), 1)
	})

	t.Run("concurrent reports each land once", func(t *testing.T) {
		t.Parallel()

		outcomes := delivery.NewMemoryStore()
		users := user.NewMemoryStore()
		require.NoError(t, users.Insert(context.Background(), &user.User{
			Email:       "c@x.com",
			Entitlement: user.FreeEntitlement(),
		}))

		svc := newService(outcomes, users)

		const n = 20
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result := delivery.ResultDone
				if i%2 == 1 {
					result = delivery.ResultFailed
				}
				assert.NoError(t, svc.Record(context.Background(), delivery.RecordInput{
					DriverID: "driver-4",
					Email:    "c@x.com",
					Result:   result,
				}))
			}()
		}
		wg.Wait()

		assert.Len(t, outcomes.Outcomes(), n)
		u, err := users.FindByEmail(context.Background(), "c@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(n/2), u.Stats.Delivered)
		assert.Equal(t, int64(n/2), u.Stats.Failed)
	})
}
