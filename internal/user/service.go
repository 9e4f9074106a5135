package user

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Config holds the env-driven settings for the user service.
type Config struct {
	Timezone       string `env:"QUOTA_TIMEZONE" envDefault:"Local"`     // Timezone is the calendar-day reference zone for the free-tier quota window.
	FreeDailyLimit int    `env:"QUOTA_FREE_DAILY_LIMIT" envDefault:"1"` // FreeDailyLimit is the number of allowed uses per day on the free tier.
}

// Service reconciles user records across the two creation paths (app login
// and payment notification) and gates the free-tier daily allowance.
type Service struct {
	store Store
	log   *slog.Logger

	freeDailyLimit int
	loc            *time.Location
	now            func() time.Time
}

// Option configures the user service.
type Option func(*Service)

// WithFreeDailyLimit overrides the free-tier daily allowance.
func WithFreeDailyLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.freeDailyLimit = n
		}
	}
}

// WithLocation sets the reference time zone for the quota calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source. Useful for testing with fixed times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a user service. Panics on a nil store to fail fast
// during initialization.
func NewService(store Store, log *slog.Logger, opts ...Option) *Service {
	if store == nil {
		panic("user: Store is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Service{
		store:          store,
		log:            log,
		freeDailyLimit: 1,
		loc:            time.Local,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncInput carries the app client's login payload.
type SyncInput struct {
	LocalAuthID string
	Email       string
	DisplayName string
	Photo       string
}

// SyncLogin is the app client's single source of truth on every start.
// It finds or creates the user by email, attaches the local auth id when the
// record was provisional, refreshes profile fields, stamps lastLogin, and
// returns the full current state so the client can render immediately —
// entitlement may have changed out-of-band via a provider notification while
// the client was not running.
func (s *Service) SyncLogin(ctx context.Context, in SyncInput) (*User, error) {
	in.Email = NormalizeEmail(in.Email)
	now := s.now()

	_, err := s.store.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return s.store.RecordLogin(ctx, in.Email, in.LocalAuthID, in.DisplayName, in.Photo, now)
	case errors.Is(err, ErrNotFound):
		// fall through to create
	default:
		return nil, err
	}

	id := in.LocalAuthID
	u := &User{
		LocalAuthID: &id,
		Email:       in.Email,
		DisplayName: in.DisplayName,
		Photo:       in.Photo,
		Entitlement: FreeEntitlement(),
		CreatedAt:   now,
		UpdatedAt:   now,
		LastLogin:   &now,
	}
	if err := s.store.Insert(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// A provider notification created the record between our find and
			// insert. The other path won; merge into it instead.
			return s.store.RecordLogin(ctx, in.Email, in.LocalAuthID, in.DisplayName, in.Photo, now)
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "user created on login", "email", in.Email)
	return u, nil
}

// ApplyEntitlement updates the entitlement of the user with the given email,
// creating a provisional record when none exists yet. Existing profile
// fields, stats and address are never touched.
func (s *Service) ApplyEntitlement(ctx context.Context, email string, ent Entitlement) error {
	email = NormalizeEmail(email)
	now := s.now()

	matched, err := s.store.UpdateEntitlement(ctx, email, ent, now)
	if err != nil {
		return err
	}
	if matched {
		return nil
	}

	u := &User{
		LocalAuthID: nil,
		Email:       email,
		DisplayName: PlaceholderDisplayName,
		Entitlement: ent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// The client's login created the record concurrently; retry as an
			// update against the now-existing document.
			_, err = s.store.UpdateEntitlement(ctx, email, ent, now)
		}
		return err
	}

	s.log.InfoContext(ctx, "provisional user created from payment", "email", email, "plan", ent.PlanType)
	return nil
}

// DowngradeByEmail transitions the user to the free tier. A missing user is a
// logged no-op: cancellation never creates accounts.
func (s *Service) DowngradeByEmail(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	matched, err := s.store.UpdateEntitlement(ctx, email, FreeEntitlement(), s.now())
	if err != nil {
		return err
	}
	if !matched {
		s.log.WarnContext(ctx, "cancellation for unknown user", "email", email)
	}
	return nil
}

// DowngradeBySubscriptionID is the cancellation fallback for notifications
// with no resolvable payer identity. It reports whether a linked user was
// found.
func (s *Service) DowngradeBySubscriptionID(ctx context.Context, subscriptionID string) (bool, error) {
	return s.store.UpdateEntitlementBySubscriptionID(ctx, subscriptionID, FreeEntitlement(), s.now())
}

// FindByEmail returns the user with the given email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.FindByEmail(ctx, NormalizeEmail(email))
}

// FindBySubscriptionID returns the user linked to the given provider
// subscription id.
func (s *Service) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*User, error) {
	return s.store.FindBySubscriptionID(ctx, subscriptionID)
}

// UpdateProfile stores the user's home address. An unknown email is a logged
// no-op; the client still gets success, matching the forgiving profile flow.
func (s *Service) UpdateProfile(ctx context.Context, email string, addr *Address) error {
	email = NormalizeEmail(email)
	matched, err := s.store.SetHomeAddress(ctx, email, addr, s.now())
	if err != nil {
		return err
	}
	if !matched {
		s.log.WarnContext(ctx, "profile update for unknown user", "email", email)
	}
	return nil
}

// QuotaDecision is the outcome of a quota check.
type QuotaDecision struct {
	Allowed   bool
	Unlimited bool
	Usage     int
}

// CheckAndConsume decides whether the user may perform the rate-limited
// action today, consuming one unit of the free-tier allowance on success.
// Pro and black users always pass without touching the counter. The
// reset-then-consume sequence is two store-level conditional updates, so
// concurrent requests cannot double-spend the allowance.
func (s *Service) CheckAndConsume(ctx context.Context, email string) (QuotaDecision, error) {
	email = NormalizeEmail(email)
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return QuotaDecision{}, err
	}

	if u.Entitlement.IsPro {
		return QuotaDecision{Allowed: true, Unlimited: true}, nil
	}

	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	if err := s.store.ResetQuota(ctx, email, dayStart); err != nil {
		return QuotaDecision{}, err
	}

	count, ok, err := s.store.ConsumeQuota(ctx, email, s.freeDailyLimit, now)
	if err != nil {
		return QuotaDecision{}, err
	}
	if !ok {
		return QuotaDecision{Allowed: false}, nil
	}
	return QuotaDecision{Allowed: true, Usage: count}, nil
}
