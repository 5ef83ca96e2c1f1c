package usage

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

// NewPGStore creates a PostgreSQL usage store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, userID string) (*Record, error) {
	const query = `
		SELECT user_id, count, updated_at
		FROM user_api_limits
		WHERE user_id = $1`

	var rec Record
	err := s.pool.QueryRow(ctx, query, userID).Scan(&rec.UserID, &rec.Count, &rec.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get usage record for %s: %w", userID, err)
	}
	return &rec, nil
}

func (s *PGStore) Save(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("usage record is required")
	}

	const query = `
		INSERT INTO user_api_limits (user_id, count, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET count = EXCLUDED.count, updated_at = EXCLUDED.updated_at`

	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}

	if _, err := s.pool.Exec(ctx, query, record.UserID, record.Count, record.UpdatedAt); err != nil {
		return fmt.Errorf("save usage record for %s: %w", record.UserID, err)
	}
	return nil
}
