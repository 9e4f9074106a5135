package user

import (
	"context"
	"time"
)

// Store is the document-store surface the user domain relies on. All mutating
// operations are atomic at the store level: counter bumps are delta
// operations, quota consumption is a single conditional update, and inserts
// surface unique-key violations as ErrDuplicateEmail instead of raw driver
// errors.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*User, error)

	// Insert creates a new user document. Returns ErrDuplicateEmail when a
	// concurrent creation for the same email got there first.
	Insert(ctx context.Context, u *User) error

	// UpdateEntitlement sets plan tier and pro flag in place, leaving every
	// other field untouched. The linked subscription id is written only when
	// non-empty so a downgrade keeps the previously stored link.
	// Reports whether a document matched.
	UpdateEntitlement(ctx context.Context, email string, ent Entitlement, now time.Time) (bool, error)

	// UpdateEntitlementBySubscriptionID is the cancellation fallback for
	// notifications that carry no payer identity.
	UpdateEntitlementBySubscriptionID(ctx context.Context, subscriptionID string, ent Entitlement, now time.Time) (bool, error)

	// RecordLogin attaches the local auth id when unset (one-time link),
	// refreshes display name and photo when supplied, stamps lastLogin, and
	// returns the resulting document. Returns ErrNotFound when no user
	// matches the email.
	RecordLogin(ctx context.Context, email, localAuthID, displayName, photo string, now time.Time) (*User, error)

	SetHomeAddress(ctx context.Context, email string, addr *Address, now time.Time) (bool, error)

	// IncrementStats bumps exactly one of stats.delivered / stats.failed by
	// one. Reports whether a user matched; a miss is not an error.
	IncrementStats(ctx context.Context, email string, delivered bool, now time.Time) (bool, error)

	// ResetQuota zeroes the daily counter for users whose last use predates
	// the given day start. Conditional at the store level so concurrent
	// resets are harmless.
	ResetQuota(ctx context.Context, email string, dayStart time.Time) error

	// ConsumeQuota increments the daily counter only while it is still under
	// the limit, stamping the last-use timestamp in the same atomic update.
	// Returns the new counter value and whether the consumption happened.
	ConsumeQuota(ctx context.Context, email string, limit int, now time.Time) (int, bool, error)
}
