package gate

import "errors"

var (
	ErrMissingUserID    = errors.New("user ID is required")
	ErrEntitlementCheck = errors.New("failed to check subscription entitlement")
	ErrUsageLookup      = errors.New("failed to load usage count")
	ErrUsageWrite       = errors.New("failed to record usage")
	ErrInvalidFreeLimit = errors.New("free generation limit must be positive")
	ErrNilEntitlements  = errors.New("entitlement checker is required")
	ErrNilUsageStore    = errors.New("usage store is required")
)
