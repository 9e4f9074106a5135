package user

import (
	"strings"
	"time"
)

// Plan identifies an entitlement tier.
type Plan string

const (
	PlanFree  Plan = "free"
	PlanPro   Plan = "pro"
	PlanBlack Plan = "black"
)

// PlaceholderDisplayName is assigned to provisional users created from a
// payment notification before the owning app client ever authenticated.
const PlaceholderDisplayName = "Web User"

// NormalizeEmail canonicalizes an email for use as the join key between the
// app client and the payment provider. The provider echoes back whatever
// casing the app sent at subscription time, so the login path and the
// notification path converge on the same record only if both apply this
// before any lookup or write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Entitlement is the tuple governing feature access for a user.
// Invariant: IsPro is true exactly when PlanType is not free.
type Entitlement struct {
	PlanType       Plan   `bson:"planType" json:"planType"`
	IsPro          bool   `bson:"isPro" json:"isPro"`
	SubscriptionID string `bson:"subscriptionId,omitempty" json:"subscriptionId,omitempty"`
}

// FreeEntitlement returns the default entitlement for new app-originated users.
func FreeEntitlement() Entitlement {
	return Entitlement{PlanType: PlanFree}
}

// Consistent reports whether the IsPro flag matches the plan tier.
func (e Entitlement) Consistent() bool {
	return e.IsPro == (e.PlanType != PlanFree)
}

// QuotaState tracks the free-tier daily allowance window.
type QuotaState struct {
	DailyUseCount int        `bson:"dailyUseCount" json:"dailyUseCount"`
	LastUseDate   *time.Time `bson:"lastUseDate,omitempty" json:"lastUseDate,omitempty"`
}

// Stats holds denormalized delivery counters for fast profile reads.
// Counters only increase; the outcome log is the source of truth.
type Stats struct {
	Delivered int64 `bson:"delivered" json:"delivered"`
	Failed    int64 `bson:"failed" json:"failed"`
}

// Address is a structured place attached to a user profile.
type Address struct {
	Address string  `bson:"address,omitempty" json:"address,omitempty"`
	Lat     float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng     float64 `bson:"lng,omitempty" json:"lng,omitempty"`
}

// User is one account, uniquely keyed by email. Email is the only stable join
// key between the mobile client and the payment provider; LocalAuthID stays
// nil until the owning client first authenticates and is never cleared once
// set.
type User struct {
	LocalAuthID *string     `bson:"localAuthId" json:"localAuthId"`
	Email       string      `bson:"email" json:"email"`
	DisplayName string      `bson:"displayName" json:"displayName"`
	Photo       string      `bson:"photo,omitempty" json:"photo,omitempty"`
	Entitlement Entitlement `bson:"entitlement" json:"entitlement"`
	Quota       QuotaState  `bson:"quota" json:"quota"`
	HomeAddress *Address    `bson:"homeAddress,omitempty" json:"homeAddress,omitempty"`
	Stats       Stats       `bson:"stats" json:"stats"`
	CreatedAt   time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time   `bson:"updatedAt" json:"updatedAt"`
	LastLogin   *time.Time  `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
}

// IsProvisional reports whether the record was created from a payment
// notification and is still waiting for its app client to log in.
func (u *User) IsProvisional() bool {
	return u.LocalAuthID == nil
}
