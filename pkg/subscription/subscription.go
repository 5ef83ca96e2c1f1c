package subscription

import "time"

// Subscription is a user's billing subscription state as mirrored from
// Stripe. Each user has at most one row; UserID is the unique key.
type Subscription struct {
	UserID                 string
	StripeSubscriptionID   string
	StripeCustomerID       string
	StripePriceID          string
	StripeCurrentPeriodEnd time.Time // zero when Stripe never reported a period end
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Valid reports whether the subscription entitles its user to unlimited
// generation at the given instant: a price must be attached and the current
// period end must lie strictly in the future. A period ending exactly at now
// is already expired.
func (s *Subscription) Valid(now time.Time) bool {
	return s.StripePriceID != "" &&
		!s.StripeCurrentPeriodEnd.IsZero() &&
		s.StripeCurrentPeriodEnd.After(now)
}
