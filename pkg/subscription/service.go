package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Hitanshuser50/ContentFuse/pkg/logger"
)

// Service ties the subscription store to the billing provider and answers
// entitlement questions for the rest of the application.
type Service struct {
	store     Store
	provider  BillingProvider
	returnURL string
	log       *slog.Logger
	now       func() time.Time
}

// NewService creates a subscription service. returnURL is where the billing
// provider sends the user back after checkout or portal visits.
func NewService(store Store, provider BillingProvider, returnURL string, log *slog.Logger) *Service {
	return &Service{
		store:     store,
		provider:  provider,
		returnURL: returnURL,
		log:       log,
		now:       time.Now,
	}
}

// IsEntitled reports whether the user holds a currently valid subscription.
// A missing row means not entitled; a store failure is returned to the caller
// so it can refuse rather than guess.
func (s *Service) IsEntitled(ctx context.Context, userID string) (bool, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load subscription for %s: %w", userID, err)
	}
	return sub.Valid(s.now()), nil
}

// Current returns the stored subscription record for the user, or ErrNotFound.
func (s *Service) Current(ctx context.Context, userID string) (*Subscription, error) {
	return s.store.Get(ctx, userID)
}

// BillingSessionFor returns a portal session when the user already has a
// billing customer on file, otherwise a fresh checkout session.
func (s *Service) BillingSessionFor(ctx context.Context, userID, email string) (*BillingSession, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	sub, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load subscription for %s: %w", userID, err)
	}

	if sub != nil && sub.StripeCustomerID != "" {
		return s.provider.CreatePortalSession(ctx, sub.StripeCustomerID, s.returnURL)
	}

	return s.provider.CreateCheckoutSession(ctx, CheckoutRequest{
		UserID:     userID,
		Email:      email,
		SuccessURL: s.returnURL,
		CancelURL:  s.returnURL,
	})
}

// HandleWebhook verifies and applies a billing provider webhook. Events the
// service does not act on are acknowledged without effect.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case EventCheckoutCompleted:
		sub := &Subscription{
			UserID:                 event.UserID,
			StripeSubscriptionID:   event.SubscriptionID,
			StripeCustomerID:       event.CustomerID,
			StripePriceID:          event.PriceID,
			StripeCurrentPeriodEnd: event.CurrentPeriodEnd,
		}
		if err := s.store.Save(ctx, sub); err != nil {
			return fmt.Errorf("save subscription %s: %w", event.SubscriptionID, err)
		}
		s.log.InfoContext(ctx, "subscription activated",
			logger.UserID(event.UserID),
			slog.String("subscription_id", event.SubscriptionID))
		return nil

	case EventPaymentSucceeded:
		err := s.store.UpdateBySubscriptionID(ctx, event.SubscriptionID, event.PriceID, event.CurrentPeriodEnd)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Renewal invoice for a subscription we never recorded,
				// typically the first invoice racing the checkout event.
				s.log.WarnContext(ctx, "renewal for unknown subscription",
					slog.String("subscription_id", event.SubscriptionID))
				return nil
			}
			return fmt.Errorf("update subscription %s: %w", event.SubscriptionID, err)
		}
		s.log.InfoContext(ctx, "subscription renewed",
			slog.String("subscription_id", event.SubscriptionID))
		return nil

	default:
		s.log.DebugContext(ctx, "ignoring billing event",
			slog.String("event", event.ProviderEvent))
		return nil
	}
}
