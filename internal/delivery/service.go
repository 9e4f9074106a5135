package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rutar-app/backend/internal/user"
)

// UserStats is the slice of the user store the aggregator needs: an atomic
// delta on the denormalized success/failure counters.
type UserStats interface {
	IncrementStats(ctx context.Context, email string, delivered bool, now time.Time) (bool, error)
}

// Service records delivery outcomes and keeps the per-user counters current.
type Service struct {
	store Store
	users UserStats
	log   *slog.Logger
	now   func() time.Time
}

// Option configures the delivery service.
type Option func(*Service)

// WithClock overrides the time source. Useful for testing with fixed times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a delivery service. Panics on nil dependencies to fail
// fast during initialization.
func NewService(store Store, users UserStats, log *slog.Logger, opts ...Option) *Service {
	if store == nil {
		panic("delivery: Store is required")
	}
	if users == nil {
		panic("delivery: user stats sink is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Service{store: store, users: users, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordInput carries one reported delivery stop.
type RecordInput struct {
	DriverID string
	Email    string
	Address  string
	Lat      float64
	Lng      float64
	Result   Result
}

// Record appends exactly one immutable outcome, then bumps exactly one of the
// user's delivered/failed counters when an email is supplied. A counter miss
// (no user for the email) keeps the outcome on record and is logged for later
// reconciliation — history is never lost.
func (s *Service) Record(ctx context.Context, in RecordInput) error {
	result := in.Result
	if result != ResultDone {
		result = ResultFailed
	}

	o := &Outcome{
		ID:        uuid.NewString(),
		DriverID:  in.DriverID,
		Address:   in.Address,
		Lat:       in.Lat,
		Lng:       in.Lng,
		Result:    result,
		Timestamp: s.now(),
	}
	if err := s.store.Append(ctx, o); err != nil {
		return err
	}

	// Counters are keyed by the same canonical email the login and payment
	// paths use.
	email := user.NormalizeEmail(in.Email)
	if email == "" {
		return nil
	}

	matched, err := s.users.IncrementStats(ctx, email, result == ResultDone, o.Timestamp)
	if err != nil {
		return err
	}
	if !matched {
		s.log.WarnContext(ctx, "delivery counters skipped: no user for email",
			"email", email, "driver_id", in.DriverID)
	}
	return nil
}
