package subscription

import (
	"context"
	"time"
)

// BillingProvider abstracts the payment provider. The provider owns all
// payment complexity through hosted checkout and customer portal sessions;
// this service only stores the resulting subscription state.
type BillingProvider interface {
	// CreateCheckoutSession creates a hosted checkout session for the Pro plan.
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*BillingSession, error)

	// CreatePortalSession returns a billing portal session where an existing
	// customer can manage or cancel their subscription.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*BillingSession, error)

	// ParseWebhook verifies the webhook signature and normalizes the event.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	UserID     string // carried through session metadata so the webhook can key the row
	Email      string // pre-fill billing email if known
	SuccessURL string
	CancelURL  string
}

// BillingSession is a hosted checkout or portal session.
type BillingSession struct {
	URL       string
	SessionID string
}

// EventType is the normalized billing event type.
type EventType string

const (
	// EventCheckoutCompleted fires when a user finishes checkout; it creates
	// or replaces the user's subscription row.
	EventCheckoutCompleted EventType = "checkout_completed"

	// EventPaymentSucceeded fires on renewal invoices; it refreshes the
	// period end of the existing row.
	EventPaymentSucceeded EventType = "payment_succeeded"
)

// WebhookEvent is a normalized billing webhook event.
type WebhookEvent struct {
	Type             EventType
	ProviderEvent    string // original provider event name
	UserID           string // set only for checkout completion (from metadata)
	SubscriptionID   string
	CustomerID       string
	PriceID          string
	CurrentPeriodEnd time.Time
}
