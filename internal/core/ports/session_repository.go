package ports

import (
	"context"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// SessionRepository persists the session snapshot under a fixed storage name
// chosen when the repository is built.
type SessionRepository interface {
	// Load returns domain.ErrSnapshotNotFound when nothing has been stored yet.
	Load(ctx context.Context) (*domain.SessionSnapshot, error)
	Save(ctx context.Context, snapshot domain.SessionSnapshot) error
	Clear(ctx context.Context) error
}
