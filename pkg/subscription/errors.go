package subscription

import "errors"

var (
	ErrNotFound              = errors.New("subscription not found")
	ErrMissingUserID         = errors.New("user ID is required")
	ErrMissingAPIKey         = errors.New("stripe API key is required")
	ErrMissingWebhookSecret  = errors.New("stripe webhook secret is required")
	ErrWebhookVerification   = errors.New("webhook signature verification failed")
	ErrNoSubscriptionInEvent = errors.New("no subscription ID in webhook event")
	ErrNoUserIDInEvent       = errors.New("no user ID in webhook event metadata")
	ErrNoSessionURL          = errors.New("no session URL returned from stripe")
	ErrAlreadyLinked         = errors.New("stripe subscription already linked to another user")
)
