package billing_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rutar-app/backend/internal/billing"
)

func TestParseNotification(t *testing.T) {
	t.Parallel()

	t.Run("json body with nested data id", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/webhook",
			strings.NewReader(`{"type":"payment","data":{"id":12345}}`))
		n := billing.ParseNotification(r)
		assert.Equal(t, billing.KindPayment, n.Kind)
		assert.Equal(t, "12345", n.ResourceID)
	})

	t.Run("json body with top-level id", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/webhook",
			strings.NewReader(`{"type":"subscription_preapproval","id":"sub-77"}`))
		n := billing.ParseNotification(r)
		assert.Equal(t, billing.KindSubscription, n.Kind)
		assert.Equal(t, "sub-77", n.ResourceID)
	})

	t.Run("query parameters only", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/webhook?topic=payment&id=987", nil)
		n := billing.ParseNotification(r)
		assert.Equal(t, billing.KindPayment, n.Kind)
		assert.Equal(t, "987", n.ResourceID)
	})

	t.Run("query data.id variant", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/webhook?type=subscription_preapproval&data.id=sub-5", nil)
		n := billing.ParseNotification(r)
		assert.Equal(t, billing.KindSubscription, n.Kind)
		assert.Equal(t, "sub-5", n.ResourceID)
	})

	t.Run("body wins over query", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/webhook?topic=payment&id=1",
			strings.NewReader(`{"type":"subscription_preapproval","data":{"id":"sub-2"}}`))
		n := billing.ParseNotification(r)
		assert.Equal(t, billing.KindSubscription, n.Kind)
		assert.Equal(t, "sub-2", n.ResourceID)
	})

	t.Run("malformed body falls back to query", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/webhook?topic=payment&id=42",
			strings.NewReader(`not json at all`))
		n := billing.ParseNotification(r)
		assert.Equal(t, billing.KindPayment, n.Kind)
		assert.Equal(t, "42", n.ResourceID)
	})

	t.Run("unknown event type", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/webhook",
			strings.NewReader(`{"type":"plan_updated","data":{"id":"x"}}`))
		n := billing.ParseNotification(r)
		assert.Equal(t, billing.KindUnknown, n.Kind)
	})

	t.Run("empty request", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/webhook", nil)
		n := billing.ParseNotification(r)
		assert.Equal(t, billing.KindUnknown, n.Kind)
		assert.Empty(t, n.ResourceID)
	})
}
