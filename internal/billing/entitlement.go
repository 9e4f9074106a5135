package billing

import (
	"strings"

	"github.com/rutar-app/backend/internal/user"
)

// blackPlanMarker selects the black tier when it appears in the free-text
// plan description. Substring matching on marketing copy is fragile; a
// structured plan identifier on the provider side would be the fix, but the
// subscription plans in production only carry this marker today.
const blackPlanMarker = "BLACK"

func planForReason(reason string) user.Plan {
	if strings.Contains(strings.ToUpper(reason), blackPlanMarker) {
		return user.PlanBlack
	}
	return user.PlanPro
}

// NextEntitlement computes the entitlement that results from applying a
// provider record to the current persisted state. It is a pure function, so
// replaying the same notification converges on the same state with no
// duplicate side effects — that is the idempotency mechanism; notification
// ids are not persisted as a dedupe set.
func NextEntitlement(current user.Entitlement, rec Record) (user.Entitlement, bool) {
	switch {
	case isActivation(rec.Status):
		next := user.Entitlement{
			PlanType:       planForReason(rec.Reason),
			IsPro:          true,
			SubscriptionID: rec.ID,
		}
		return next, next != current
	case isCancellation(rec.Status):
		// The stored subscription link survives a downgrade so a replayed or
		// late cancellation can still locate the user.
		next := user.Entitlement{
			PlanType:       user.PlanFree,
			IsPro:          false,
			SubscriptionID: current.SubscriptionID,
		}
		return next, next != current
	default:
		return current, false
	}
}
