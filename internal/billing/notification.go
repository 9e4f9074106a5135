package billing

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Notification is a provider push event reduced to the only two fields the
// push payload can be trusted for: what kind of resource changed and its id.
type Notification struct {
	Kind       Kind
	ResourceID string
}

// flexID tolerates resource ids arriving as JSON strings or numbers; the
// provider uses both across event versions.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	// Unexpected shapes (objects, null) degrade to empty rather than failing
	// the whole notification.
	*f = ""
	return nil
}

// ParseNotification normalizes the provider's competing push shapes into a
// single Notification. Observed variants:
//
//	JSON body {"type": ..., "data": {"id": ...}}
//	JSON body {"type": ..., "id": ...}
//	query parameters topic|type and id|data.id
//
// Body fields win over query parameters; a malformed body falls back to the
// query. Unrecognized event types map to KindUnknown.
func ParseNotification(r *http.Request) Notification {
	var body struct {
		Type  string `json:"type"`
		Topic string `json:"topic"`
		ID    flexID `json:"id"`
		Data  struct {
			ID flexID `json:"id"`
		} `json:"data"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	q := r.URL.Query()
	eventType := firstNonEmpty(body.Type, body.Topic, q.Get("topic"), q.Get("type"))
	resourceID := firstNonEmpty(string(body.Data.ID), string(body.ID), q.Get("data.id"), q.Get("id"))

	return Notification{
		Kind:       kindForEventType(eventType),
		ResourceID: resourceID,
	}
}

func kindForEventType(eventType string) Kind {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "payment":
		return KindPayment
	case "subscription_preapproval", "preapproval":
		return KindSubscription
	default:
		return KindUnknown
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
