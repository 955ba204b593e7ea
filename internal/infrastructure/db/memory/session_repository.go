// Package memory keeps the session snapshot in process memory. It backs
// STORAGE_BACKEND=memory and the tests of every component that needs a
// SessionRepository.
package memory

import (
	"context"
	"sync"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// SessionRepository stores encoded snapshots so a load always goes through the
// same serialization as the remote backends.
type SessionRepository struct {
	mu   sync.Mutex
	data []byte
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

func (r *SessionRepository) Load(_ context.Context) (*domain.SessionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return domain.DecodeSessionSnapshot(r.data)
}

func (r *SessionRepository) Save(_ context.Context, snapshot domain.SessionSnapshot) error {
	data, err := snapshot.Encode()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	r.data = nil
	r.mu.Unlock()
	return nil
}
