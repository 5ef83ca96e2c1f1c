package subscription

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with process-local state for tests and local
// development.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewMemoryStore creates an empty in-memory subscription store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]Subscription)}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (s *MemoryStore) Save(ctx context.Context, sub *Subscription) error {
	if sub == nil || sub.UserID == "" {
		return ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *sub
	now := time.Now().UTC()
	if existing, ok := s.subs[saved.UserID]; ok {
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	s.subs[saved.UserID] = saved
	return nil
}

func (s *MemoryStore) UpdateBySubscriptionID(ctx context.Context, stripeSubscriptionID, stripePriceID string, currentPeriodEnd time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, sub := range s.subs {
		if sub.StripeSubscriptionID == stripeSubscriptionID {
			sub.StripePriceID = stripePriceID
			sub.StripeCurrentPeriodEnd = currentPeriodEnd
			sub.UpdatedAt = time.Now().UTC()
			s.subs[userID] = sub
			return nil
		}
	}
	return ErrNotFound
}
