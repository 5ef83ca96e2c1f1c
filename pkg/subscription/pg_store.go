package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hitanshuser50/ContentFuse/pkg/pg"
)

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL subscription store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, userID string) (*Subscription, error) {
	const query = `
		SELECT user_id, stripe_subscription_id, stripe_customer_id,
		       stripe_price_id, stripe_current_period_end, created_at, updated_at
		FROM user_subscriptions
		WHERE user_id = $1`

	var sub Subscription
	var subID, customerID, priceID *string
	var periodEnd *time.Time
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&sub.UserID,
		&subID,
		&customerID,
		&priceID,
		&periodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscription for %s: %w", userID, err)
	}
	if subID != nil {
		sub.StripeSubscriptionID = *subID
	}
	if customerID != nil {
		sub.StripeCustomerID = *customerID
	}
	if priceID != nil {
		sub.StripePriceID = *priceID
	}
	if periodEnd != nil {
		sub.StripeCurrentPeriodEnd = *periodEnd
	}
	return &sub, nil
}

func (s *PGStore) Save(ctx context.Context, sub *Subscription) error {
	if sub == nil || sub.UserID == "" {
		return ErrMissingUserID
	}

	const query = `
		INSERT INTO user_subscriptions
			(user_id, stripe_subscription_id, stripe_customer_id,
			 stripe_price_id, stripe_current_period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_price_id = EXCLUDED.stripe_price_id,
			stripe_current_period_end = EXCLUDED.stripe_current_period_end,
			updated_at = now()`

	if _, err := s.pool.Exec(ctx, query,
		sub.UserID,
		sub.StripeSubscriptionID,
		sub.StripeCustomerID,
		sub.StripePriceID,
		nullableTime(sub.StripeCurrentPeriodEnd),
	); err != nil {
		// The upsert keys on user_id; a 23505 here means another user's row
		// already holds this Stripe subscription or customer ID.
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("save subscription for %s: %w", sub.UserID, ErrAlreadyLinked)
		}
		return fmt.Errorf("save subscription for %s: %w", sub.UserID, err)
	}
	return nil
}

func (s *PGStore) UpdateBySubscriptionID(ctx context.Context, stripeSubscriptionID, stripePriceID string, currentPeriodEnd time.Time) error {
	if stripeSubscriptionID == "" {
		return errors.New("stripe subscription ID is required")
	}

	const query = `
		UPDATE user_subscriptions
		SET stripe_price_id = $2, stripe_current_period_end = $3, updated_at = now()
		WHERE stripe_subscription_id = $1`

	tag, err := s.pool.Exec(ctx, query, stripeSubscriptionID, stripePriceID, nullableTime(currentPeriodEnd))
	if err != nil {
		return fmt.Errorf("update subscription %s: %w", stripeSubscriptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
