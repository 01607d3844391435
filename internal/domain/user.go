package domain

import "time"

// Subscription enumerates the closed set of subscription tiers.
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// ValidSubscription reports whether s is a member of the closed tier set.
func ValidSubscription(s Subscription) bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// User is the domain model for registered accounts.
//
// SessionToken mirrors the currently valid signed session credential; it is
// nil when the user is signed out. VerificationToken is present exactly while
// Verified is false.
type User struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      string
	Subscription      Subscription
	SessionToken      *string
	Verified          bool
	VerificationToken *string
	AvatarURL         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
