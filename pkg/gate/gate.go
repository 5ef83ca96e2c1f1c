package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Hitanshuser50/ContentFuse/pkg/logger"
	"github.com/Hitanshuser50/ContentFuse/pkg/usage"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionDenyQuotaExceeded
)

// String implements fmt.Stringer for log output.
func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDenyQuotaExceeded:
		return "deny_quota_exceeded"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Result carries the decision plus the state it was based on.
type Result struct {
	Decision Decision
	// Entitled is true when the user holds a valid subscription and the
	// quota was not consulted.
	Entitled bool
	// Remaining is the number of free generations left, 0 when denied.
	// Unset for entitled users.
	Remaining int64
}

// EntitlementChecker answers whether a user holds an active subscription.
type EntitlementChecker interface {
	IsEntitled(ctx context.Context, userID string) (bool, error)
}

// Config holds gate settings.
type Config struct {
	// FreeLimit is how many generations an unsubscribed user gets.
	FreeLimit int64 `env:"FREE_GENERATION_LIMIT" envDefault:"5"`
}

// Gate authorizes generation requests against subscription state and the
// free-tier counter.
type Gate struct {
	entitlements EntitlementChecker
	store        usage.Store
	freeLimit    int64
	log          *slog.Logger
}

// New creates a Gate.
func New(entitlements EntitlementChecker, store usage.Store, cfg Config, log *slog.Logger) (*Gate, error) {
	if entitlements == nil {
		return nil, ErrNilEntitlements
	}
	if store == nil {
		return nil, ErrNilUsageStore
	}
	if cfg.FreeLimit <= 0 {
		return nil, ErrInvalidFreeLimit
	}
	return &Gate{
		entitlements: entitlements,
		store:        store,
		freeLimit:    cfg.FreeLimit,
		log:          log,
	}, nil
}

// Authorize decides whether the user may run a generation. Entitlement is
// checked before the counter so subscribers never touch it. Persistence
// failures deny the request; refusing a generation is recoverable, handing
// out unmetered ones is not.
func (g *Gate) Authorize(ctx context.Context, userID string) (Result, error) {
	if userID == "" {
		return Result{}, ErrMissingUserID
	}

	entitled, err := g.entitlements.IsEntitled(ctx, userID)
	if err != nil {
		return Result{}, errors.Join(ErrEntitlementCheck, err)
	}
	if entitled {
		return Result{Decision: DecisionAllow, Entitled: true}, nil
	}

	count, err := g.currentCount(ctx, userID)
	if err != nil {
		return Result{}, errors.Join(ErrUsageLookup, err)
	}

	if count >= g.freeLimit {
		g.log.InfoContext(ctx, "free quota exhausted",
			logger.UserID(userID),
			slog.Int64("count", count),
			slog.Int64("limit", g.freeLimit))
		return Result{Decision: DecisionDenyQuotaExceeded}, nil
	}

	return Result{
		Decision:  DecisionAllow,
		Remaining: g.freeLimit - count,
	}, nil
}

// RecordUsage charges one generation to the user's free counter. Callers
// invoke it only after the provider delivered a result, and only for users
// Authorize reported as not entitled. Two racing requests may each read the
// same count and both write count+1; the quota is a product limit, not a
// ledger, so losing one tick is acceptable.
func (g *Gate) RecordUsage(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	count, err := g.currentCount(ctx, userID)
	if err != nil {
		return errors.Join(ErrUsageLookup, err)
	}

	if err := g.store.Save(ctx, &usage.Record{UserID: userID, Count: count + 1}); err != nil {
		g.log.ErrorContext(ctx, "usage write failed",
			logger.UserID(userID),
			logger.Error(err))
		return errors.Join(ErrUsageWrite, err)
	}
	return nil
}

// Snapshot reports the user's current counter and limit for display.
func (g *Gate) Snapshot(ctx context.Context, userID string) (count, limit int64, err error) {
	if userID == "" {
		return 0, 0, ErrMissingUserID
	}
	count, err = g.currentCount(ctx, userID)
	if err != nil {
		return 0, 0, errors.Join(ErrUsageLookup, err)
	}
	return count, g.freeLimit, nil
}

// FreeLimit returns the configured free generation limit.
func (g *Gate) FreeLimit() int64 { return g.freeLimit }

// currentCount reads the user's counter, defaulting to zero for users who
// have never generated anything.
func (g *Gate) currentCount(ctx context.Context, userID string) (int64, error) {
	record, err := g.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, usage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return record.Count, nil
}
