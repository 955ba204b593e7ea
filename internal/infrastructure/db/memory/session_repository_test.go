package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

func TestSessionRepository_EmptyLoad(t *testing.T) {
	repo := NewSessionRepository()
	if _, err := repo.Load(context.Background()); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSessionRepository_RoundTripThroughStoreRestore(t *testing.T) {
	repo := NewSessionRepository()
	lastLogin := time.Date(2026, 1, 5, 8, 30, 0, 0, time.UTC)
	state := domain.SessionState{
		User: &domain.User{
			ID:        1,
			Username:  "admin",
			Role:      domain.RoleAdmin,
			IsActive:  true,
			CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			LastLogin: &lastLogin,
		},
		Token:           "tkn",
		IsAuthenticated: true,
		IsLoading:       true,
		Error:           "stale",
	}

	if err := repo.Save(context.Background(), state.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	restored := snap.Restore()
	if restored.Token != "tkn" || !restored.IsAuthenticated || restored.User.ID != 1 {
		t.Fatalf("unexpected restore: %+v", restored)
	}
	if !restored.User.LastLogin.Equal(lastLogin) {
		t.Fatalf("last login lost: %v", restored.User.LastLogin)
	}
	if restored.IsLoading || restored.Error != "" {
		t.Fatalf("transient flags leaked through persistence: %+v", restored)
	}
}

func TestSessionRepository_Clear(t *testing.T) {
	repo := NewSessionRepository()
	_ = repo.Save(context.Background(), domain.SessionSnapshot{Token: "tkn"})

	if err := repo.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := repo.Load(context.Background()); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound after clear, got %v", err)
	}
}
