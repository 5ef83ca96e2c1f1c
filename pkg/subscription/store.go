package subscription

import (
	"context"
	"time"
)

// Store defines subscription persistence. UserID is the unique key.
type Store interface {
	// Get retrieves a subscription by user ID.
	// Returns ErrNotFound if no subscription exists.
	Get(ctx context.Context, userID string) (*Subscription, error)

	// Save creates or updates a subscription keyed by UserID.
	Save(ctx context.Context, sub *Subscription) error

	// UpdateBySubscriptionID refreshes the price and period end of the row
	// holding the given Stripe subscription ID. Invoice webhooks carry no
	// user metadata, so renewals are keyed by the provider's ID.
	// Returns ErrNotFound if no such row exists.
	UpdateBySubscriptionID(ctx context.Context, stripeSubscriptionID, stripePriceID string, currentPeriodEnd time.Time) error
}
