package billing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rutar-app/backend/internal/user"
)

// Processor turns provider notifications into entitlement state. It is the
// only component allowed to mutate entitlements, and every branch it can take
// ends in an acknowledgment: unknown shapes, orphaned identities and failed
// lookups are logged and dropped, never surfaced to the provider.
type Processor struct {
	provider Provider
	users    *user.Service
	cache    RecordCache
	log      *slog.Logger
}

// ProcessorOption configures the processor.
type ProcessorOption func(*Processor)

// WithRecordCache installs a provider record cache.
func WithRecordCache(c RecordCache) ProcessorOption {
	return func(p *Processor) { p.cache = c }
}

// NewProcessor creates a notification processor. Panics on nil dependencies
// to fail fast during initialization.
func NewProcessor(provider Provider, users *user.Service, log *slog.Logger, opts ...ProcessorOption) *Processor {
	if provider == nil {
		panic("billing: Provider is required")
	}
	if users == nil {
		panic("billing: user service is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	p := &Processor{provider: provider, users: users, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles one normalized notification end to end: re-query the
// provider for the authoritative record, resolve the payer identity, run the
// entitlement transition and apply it. Returning an error means only that
// this notification was abandoned; the webhook endpoint acknowledges either
// way.
func (p *Processor) Process(ctx context.Context, n Notification) error {
	if n.Kind == KindUnknown || n.ResourceID == "" {
		p.log.InfoContext(ctx, "notification ignored", "kind", n.Kind, "resource_id", n.ResourceID)
		return nil
	}

	rec, err := p.lookup(ctx, n)
	if err != nil {
		return err
	}

	email, resolved := ResolveIdentity(*rec)

	switch {
	case isActivation(rec.Status):
		if !resolved {
			p.log.WarnContext(ctx, "orphaned activation: no payer identity",
				"kind", n.Kind, "resource_id", rec.ID, "status", rec.Status)
			return nil
		}
		return p.activate(ctx, email, rec)

	case isCancellation(rec.Status):
		return p.cancel(ctx, email, resolved, rec)

	default:
		p.log.InfoContext(ctx, "notification dropped: status not actionable",
			"kind", n.Kind, "resource_id", rec.ID, "status", rec.Status)
		return nil
	}
}

func (p *Processor) activate(ctx context.Context, email string, rec *Record) error {
	current := user.FreeEntitlement()
	if u, err := p.users.FindByEmail(ctx, email); err == nil {
		current = u.Entitlement
	} else if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	next, changed := NextEntitlement(current, *rec)
	if !changed {
		p.log.InfoContext(ctx, "entitlement already current", "email", email, "plan", next.PlanType)
		return nil
	}

	if err := p.users.ApplyEntitlement(ctx, email, next); err != nil {
		return err
	}
	p.log.InfoContext(ctx, "entitlement activated",
		"email", email, "plan", next.PlanType, "subscription_id", next.SubscriptionID)
	return nil
}

func (p *Processor) cancel(ctx context.Context, email string, resolved bool, rec *Record) error {
	if resolved {
		if err := p.users.DowngradeByEmail(ctx, email); err != nil {
			return err
		}
		p.log.InfoContext(ctx, "entitlement cancelled", "email", email, "status", rec.Status)
		return nil
	}

	// Cancellation events omit payer identity more often than activations.
	// The subscription id stored at activation time is the fallback key —
	// the one place a non-email key locates a user.
	matched, err := p.users.DowngradeBySubscriptionID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if !matched {
		p.log.WarnContext(ctx, "orphaned cancellation: no identity and no linked subscription",
			"resource_id", rec.ID, "status", rec.Status)
		return nil
	}
	p.log.InfoContext(ctx, "entitlement cancelled via subscription link",
		"subscription_id", rec.ID, "status", rec.Status)
	return nil
}

func (p *Processor) lookup(ctx context.Context, n Notification) (*Record, error) {
	key := string(n.Kind) + ":" + n.ResourceID
	if p.cache != nil {
		if rec, ok := p.cache.Get(ctx, key); ok {
			return rec, nil
		}
	}

	var (
		rec *Record
		err error
	)
	switch n.Kind {
	case KindPayment:
		rec, err = p.provider.GetPayment(ctx, n.ResourceID)
	case KindSubscription:
		rec, err = p.provider.GetSubscription(ctx, n.ResourceID)
	}
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.cache.Set(ctx, key, rec)
	}
	return rec, nil
}
