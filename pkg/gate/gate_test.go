package gate_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hitanshuser50/ContentFuse/pkg/gate"
	"github.com/Hitanshuser50/ContentFuse/pkg/usage"
)

type entitlementFunc func(ctx context.Context, userID string) (bool, error)

func (f entitlementFunc) IsEntitled(ctx context.Context, userID string) (bool, error) {
	return f(ctx, userID)
}

func entitled(v bool) entitlementFunc {
	return func(context.Context, string) (bool, error) { return v, nil }
}

type failingStore struct {
	getErr  error
	saveErr error
}

func (s *failingStore) Get(ctx context.Context, userID string) (*usage.Record, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return nil, usage.ErrNotFound
}

func (s *failingStore) Save(ctx context.Context, record *usage.Record) error {
	return s.saveErr
}

func newGate(t *testing.T, checker gate.EntitlementChecker, store usage.Store, limit int64) *gate.Gate {
	t.Helper()
	g, err := gate.New(checker, store, gate.Config{FreeLimit: limit}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return g
}

func TestNew(t *testing.T) {
	t.Parallel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("rejects nil entitlement checker", func(t *testing.T) {
		t.Parallel()
		_, err := gate.New(nil, usage.NewMemoryStore(), gate.Config{FreeLimit: 5}, log)
		require.ErrorIs(t, err, gate.ErrNilEntitlements)
	})

	t.Run("rejects nil usage store", func(t *testing.T) {
		t.Parallel()
		_, err := gate.New(entitled(false), nil, gate.Config{FreeLimit: 5}, log)
		require.ErrorIs(t, err, gate.ErrNilUsageStore)
	})

	t.Run("rejects non positive limit", func(t *testing.T) {
		t.Parallel()
		_, err := gate.New(entitled(false), usage.NewMemoryStore(), gate.Config{}, log)
		require.ErrorIs(t, err, gate.ErrInvalidFreeLimit)
	})
}

func TestAuthorize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fresh user is allowed with full quota", func(t *testing.T) {
		t.Parallel()
		g := newGate(t, entitled(false), usage.NewMemoryStore(), 5)

		res, err := g.Authorize(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, gate.DecisionAllow, res.Decision)
		assert.False(t, res.Entitled)
		assert.EqualValues(t, 5, res.Remaining)
	})

	t.Run("last free generation is allowed", func(t *testing.T) {
		t.Parallel()
		store := usage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, &usage.Record{UserID: "user_1", Count: 4}))
		g := newGate(t, entitled(false), store, 5)

		res, err := g.Authorize(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, gate.DecisionAllow, res.Decision)
		assert.EqualValues(t, 1, res.Remaining)
	})

	t.Run("denied at the limit", func(t *testing.T) {
		t.Parallel()
		store := usage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, &usage.Record{UserID: "user_1", Count: 5}))
		g := newGate(t, entitled(false), store, 5)

		res, err := g.Authorize(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, gate.DecisionDenyQuotaExceeded, res.Decision)
		assert.EqualValues(t, 0, res.Remaining)
	})

	t.Run("denied above the limit", func(t *testing.T) {
		t.Parallel()
		store := usage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, &usage.Record{UserID: "user_1", Count: 17}))
		g := newGate(t, entitled(false), store, 5)

		res, err := g.Authorize(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, gate.DecisionDenyQuotaExceeded, res.Decision)
	})

	t.Run("subscriber bypasses the counter", func(t *testing.T) {
		t.Parallel()
		store := usage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, &usage.Record{UserID: "user_1", Count: 9999}))
		g := newGate(t, entitled(true), store, 5)

		res, err := g.Authorize(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, gate.DecisionAllow, res.Decision)
		assert.True(t, res.Entitled)
	})

	t.Run("entitlement check failure denies", func(t *testing.T) {
		t.Parallel()
		checker := entitlementFunc(func(context.Context, string) (bool, error) {
			return false, errors.New("store unreachable")
		})
		g := newGate(t, checker, usage.NewMemoryStore(), 5)

		_, err := g.Authorize(ctx, "user_1")
		require.ErrorIs(t, err, gate.ErrEntitlementCheck)
	})

	t.Run("usage lookup failure denies", func(t *testing.T) {
		t.Parallel()
		g := newGate(t, entitled(false), &failingStore{getErr: errors.New("timeout")}, 5)

		_, err := g.Authorize(ctx, "user_1")
		require.ErrorIs(t, err, gate.ErrUsageLookup)
	})

	t.Run("missing user ID is rejected", func(t *testing.T) {
		t.Parallel()
		g := newGate(t, entitled(false), usage.NewMemoryStore(), 5)

		_, err := g.Authorize(ctx, "")
		require.ErrorIs(t, err, gate.ErrMissingUserID)
	})
}

func TestRecordUsage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first charge creates the record at one", func(t *testing.T) {
		t.Parallel()
		store := usage.NewMemoryStore()
		g := newGate(t, entitled(false), store, 5)

		require.NoError(t, g.RecordUsage(ctx, "user_1"))

		record, err := store.Get(ctx, "user_1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, record.Count)
	})

	t.Run("subsequent charges increment", func(t *testing.T) {
		t.Parallel()
		store := usage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, &usage.Record{UserID: "user_1", Count: 3}))
		g := newGate(t, entitled(false), store, 5)

		require.NoError(t, g.RecordUsage(ctx, "user_1"))

		record, err := store.Get(ctx, "user_1")
		require.NoError(t, err)
		assert.EqualValues(t, 4, record.Count)
	})

	t.Run("write failure is reported", func(t *testing.T) {
		t.Parallel()
		g := newGate(t, entitled(false), &failingStore{saveErr: errors.New("disk full")}, 5)

		err := g.RecordUsage(ctx, "user_1")
		require.ErrorIs(t, err, gate.ErrUsageWrite)
	})
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fresh user reads zero of limit", func(t *testing.T) {
		t.Parallel()
		g := newGate(t, entitled(false), usage.NewMemoryStore(), 5)

		count, limit, err := g.Snapshot(ctx, "user_1")
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
		assert.EqualValues(t, 5, limit)
	})

	t.Run("reports the stored count", func(t *testing.T) {
		t.Parallel()
		store := usage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, &usage.Record{UserID: "user_1", Count: 2}))
		g := newGate(t, entitled(false), store, 5)

		count, limit, err := g.Snapshot(ctx, "user_1")
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
		assert.EqualValues(t, 5, limit)
	})
}
