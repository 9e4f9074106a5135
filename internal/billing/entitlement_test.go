package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rutar-app/backend/internal/billing"
	"github.com/rutar-app/backend/internal/user"
)

func TestNextEntitlement(t *testing.T) {
	t.Parallel()

	t.Run("approved activates pro", func(t *testing.T) {
		t.Parallel()

		next, changed := billing.NextEntitlement(user.FreeEntitlement(), billing.Record{
			ID:     "sub-1",
			Status: "approved",
			Reason: "Monthly subscription",
		})
		assert.True(t, changed)
		assert.Equal(t, user.PlanPro, next.PlanType)
		assert.True(t, next.IsPro)
		assert.Equal(t, "sub-1", next.SubscriptionID)
	})

	t.Run("black marker in reason selects black tier", func(t *testing.T) {
		t.Parallel()

		next, changed := billing.NextEntitlement(user.FreeEntitlement(), billing.Record{
			ID:     "sub-2",
			Status: "authorized",
			Reason: "RutAR PRO Black",
		})
		assert.True(t, changed)
		assert.Equal(t, user.PlanBlack, next.PlanType)
		assert.True(t, next.IsPro)
	})

	t.Run("marker match is case-insensitive", func(t *testing.T) {
		t.Parallel()

		next, _ := billing.NextEntitlement(user.FreeEntitlement(), billing.Record{
			ID:     "sub-3",
			Status: "approved",
			Reason: "plan black mensual",
		})
		assert.Equal(t, user.PlanBlack, next.PlanType)
	})

	t.Run("cancelled downgrades to free keeping the subscription link", func(t *testing.T) {
		t.Parallel()

		current := user.Entitlement{PlanType: user.PlanPro, IsPro: true, SubscriptionID: "sub-1"}
		next, changed := billing.NextEntitlement(current, billing.Record{ID: "sub-1", Status: "cancelled"})
		assert.True(t, changed)
		assert.Equal(t, user.PlanFree, next.PlanType)
		assert.False(t, next.IsPro)
		assert.Equal(t, "sub-1", next.SubscriptionID)
	})

	t.Run("paused behaves like cancelled", func(t *testing.T) {
		t.Parallel()

		current := user.Entitlement{PlanType: user.PlanBlack, IsPro: true, SubscriptionID: "sub-9"}
		next, changed := billing.NextEntitlement(current, billing.Record{ID: "sub-9", Status: "paused"})
		assert.True(t, changed)
		assert.Equal(t, user.PlanFree, next.PlanType)
	})

	t.Run("unrecognized status changes nothing", func(t *testing.T) {
		t.Parallel()

		current := user.Entitlement{PlanType: user.PlanPro, IsPro: true, SubscriptionID: "sub-1"}
		next, changed := billing.NextEntitlement(current, billing.Record{ID: "sub-1", Status: "pending"})
		assert.False(t, changed)
		assert.Equal(t, current, next)
	})

	t.Run("replaying an activation is a no-op", func(t *testing.T) {
		t.Parallel()

		rec := billing.Record{ID: "sub-1", Status: "approved", Reason: "PRO"}
		once, changed := billing.NextEntitlement(user.FreeEntitlement(), rec)
		assert.True(t, changed)

		twice, changed := billing.NextEntitlement(once, rec)
		assert.False(t, changed)
		assert.Equal(t, once, twice)
	})

	t.Run("isPro always matches plan tier", func(t *testing.T) {
		t.Parallel()

		statuses := []string{"approved", "authorized", "cancelled", "paused", "pending", "rejected"}
		current := user.FreeEntitlement()
		for _, status := range statuses {
			next, _ := billing.NextEntitlement(current, billing.Record{ID: "sub-x", Status: status, Reason: "black"})
			assert.True(t, next.Consistent(), "status %q broke the isPro/planType invariant", status)
			current = next
		}
	})
}
