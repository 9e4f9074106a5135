package billing

import "context"

// Provider queries the payment provider for the authoritative state of a
// notification's subject. One best-effort lookup per notification; this
// service runs no retry loop toward the provider.
type Provider interface {
	GetSubscription(ctx context.Context, id string) (*Record, error)
	GetPayment(ctx context.Context, id string) (*Record, error)
}
