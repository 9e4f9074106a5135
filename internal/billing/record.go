package billing

import "strings"

// Kind tags the notification subject: a recurring subscription, a payment, or
// something this service does not act on.
type Kind string

const (
	KindSubscription Kind = "subscription"
	KindPayment      Kind = "payment"
	KindUnknown      Kind = "unknown"
)

// Payer is the nested payer object some provider records carry.
type Payer struct {
	Email string `json:"email"`
}

// Record is the authoritative provider state for a subscription or payment,
// fetched by id. Push payloads are never trusted for these fields; only the
// re-queried record is.
type Record struct {
	ID                string
	Kind              Kind
	Status            string
	ExternalReference string
	PayerEmail        string
	Payer             Payer
	Reason            string
	Amount            float64
}

// activation statuses grant paid access; cancellation statuses revoke it.
// Anything else (pending, in_process, rejected, ...) is acknowledged and
// dropped.
func isActivation(status string) bool {
	switch strings.ToLower(status) {
	case "approved", "authorized":
		return true
	}
	return false
}

func isCancellation(status string) bool {
	switch strings.ToLower(status) {
	case "cancelled", "paused":
		return true
	}
	return false
}
