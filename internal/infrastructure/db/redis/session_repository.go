package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

const keyPrefix = "dashboard:"

// SessionRepository persists the session snapshot as JSON under a single key.
// Key format: dashboard:<storage name>
type SessionRepository struct {
	client redis.Cmdable
	key    string
}

// NewSessionRepository creates a SessionRepository keyed by name.
func NewSessionRepository(client redis.Cmdable, name string) *SessionRepository {
	return &SessionRepository{client: client, key: keyPrefix + name}
}

// Load returns domain.ErrSnapshotNotFound when the key does not exist.
func (r *SessionRepository) Load(ctx context.Context) (*domain.SessionSnapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return domain.DecodeSessionSnapshot(data)
}

// Save overwrites the snapshot. It never expires: token lifetime is enforced
// by the backend, and an expired token is caught by CheckAuth.
func (r *SessionRepository) Save(ctx context.Context, snapshot domain.SessionSnapshot) error {
	data, err := snapshot.Encode()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
