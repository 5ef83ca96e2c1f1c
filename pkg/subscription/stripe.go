package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig holds configuration for the Stripe billing provider.
type StripeConfig struct {
	APIKey        string `env:"STRIPE_API_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`

	// Pro plan sold through dynamic price data, matching the single
	// unlimited-generation tier the product offers.
	ProductName        string `env:"STRIPE_PRODUCT_NAME" envDefault:"ContentFuse Pro"`
	ProductDescription string `env:"STRIPE_PRODUCT_DESCRIPTION" envDefault:"Unlimited AI Generations."`
	UnitAmount         int64  `env:"STRIPE_UNIT_AMOUNT" envDefault:"2000"`
	Currency           string `env:"STRIPE_CURRENCY" envDefault:"usd"`
}

// StripeProvider implements BillingProvider for Stripe.
type StripeProvider struct {
	api *client.API
	cfg StripeConfig
}

// NewStripeProvider creates a Stripe billing provider.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	api := &client.API{}
	api.Init(cfg.APIKey, nil)

	return &StripeProvider{api: api, cfg: cfg}, nil
}

// CreateCheckoutSession creates a hosted subscription checkout for the Pro
// plan. The user ID travels in session metadata so the completion webhook can
// key the subscription row.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*BillingSession, error) {
	if req.UserID == "" {
		return nil, ErrMissingUserID
	}

	params := &stripe.CheckoutSessionParams{
		Params:                   stripe.Params{Context: ctx},
		SuccessURL:               stripe.String(req.SuccessURL),
		CancelURL:                stripe.String(req.CancelURL),
		Mode:                     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(p.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(p.cfg.ProductName),
					Description: stripe.String(p.cfg.ProductDescription),
				},
				UnitAmount: stripe.Int64(p.cfg.UnitAmount),
				Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
					Interval: stripe.String("month"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.AddMetadata("userId", req.UserID)

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	if sess.URL == "" {
		return nil, ErrNoSessionURL
	}

	return &BillingSession{URL: sess.URL, SessionID: sess.ID}, nil
}

// CreatePortalSession returns a billing portal session for an existing
// Stripe customer.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*BillingSession, error) {
	if customerID == "" {
		return nil, errors.New("stripe customer ID is required")
	}

	sess, err := p.api.BillingPortalSessions.New(&stripe.BillingPortalSessionParams{
		Params:    stripe.Params{Context: ctx},
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return nil, fmt.Errorf("create stripe billing portal session: %w", err)
	}
	if sess.URL == "" {
		return nil, ErrNoSessionURL
	}

	return &BillingSession{URL: sess.URL, SessionID: sess.ID}, nil
}

// ParseWebhook verifies the signature and normalizes the two event types the
// service acts on. Other event types come back with an empty Type and are
// ignored by the caller.
func (p *StripeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.cfg.WebhookSecret)
	if err != nil {
		return nil, errors.Join(ErrWebhookVerification, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return p.checkoutCompleted(ctx, event)
	case "invoice.payment_succeeded":
		return p.paymentSucceeded(ctx, event)
	default:
		return &WebhookEvent{ProviderEvent: string(event.Type)}, nil
	}
}

func (p *StripeProvider) checkoutCompleted(ctx context.Context, event stripe.Event) (*WebhookEvent, error) {
	var session struct {
		Subscription string            `json:"subscription"`
		Metadata     map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("parse checkout session payload: %w", err)
	}

	if session.Subscription == "" {
		return nil, ErrNoSubscriptionInEvent
	}
	userID := session.Metadata["userId"]
	if userID == "" {
		return nil, ErrNoUserIDInEvent
	}

	sub, err := p.retrieveSubscription(ctx, session.Subscription)
	if err != nil {
		return nil, err
	}
	sub.Type = EventCheckoutCompleted
	sub.ProviderEvent = string(event.Type)
	sub.UserID = userID
	return sub, nil
}

func (p *StripeProvider) paymentSucceeded(ctx context.Context, event stripe.Event) (*WebhookEvent, error) {
	// Invoices reference their subscription either at the top level or, in
	// newer API versions, under parent.subscription_details.
	var invoice struct {
		Subscription string `json:"subscription"`
		Parent       struct {
			SubscriptionDetails struct {
				Subscription string `json:"subscription"`
			} `json:"subscription_details"`
		} `json:"parent"`
	}
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, fmt.Errorf("parse invoice payload: %w", err)
	}

	subID := invoice.Subscription
	if subID == "" {
		subID = invoice.Parent.SubscriptionDetails.Subscription
	}
	if subID == "" {
		return nil, ErrNoSubscriptionInEvent
	}

	sub, err := p.retrieveSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	sub.Type = EventPaymentSucceeded
	sub.ProviderEvent = string(event.Type)
	return sub, nil
}

// retrieveSubscription fetches the authoritative subscription state from
// Stripe; webhook payloads alone do not carry the period end.
func (p *StripeProvider) retrieveSubscription(ctx context.Context, subID string) (*WebhookEvent, error) {
	sub, err := p.api.Subscriptions.Get(subID, &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve stripe subscription %s: %w", subID, err)
	}

	out := &WebhookEvent{SubscriptionID: sub.ID}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
		if item.CurrentPeriodEnd > 0 {
			out.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		}
	}
	return out, nil
}
