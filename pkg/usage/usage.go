package usage

import (
	"context"
	"errors"
	"time"
)

// Record is a user's free-tier generation counter.
type Record struct {
	UserID    string
	Count     int64
	UpdatedAt time.Time
}

// ErrNotFound is returned by Store.Get when the user has no usage record yet.
var ErrNotFound = errors.New("usage record not found")

// Store defines usage counter persistence. UserID is the primary key, so
// Save is an upsert: it creates the record on first write and replaces the
// count afterwards.
type Store interface {
	// Get retrieves the usage record for a user.
	// Returns ErrNotFound when the user has never recorded a generation.
	Get(ctx context.Context, userID string) (*Record, error)

	// Save creates or updates the record keyed by UserID.
	Save(ctx context.Context, record *Record) error
}
