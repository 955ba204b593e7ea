package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/repairdesk/dashboard-state/internal/api/accounts"
	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// Runs against a live server when MONGO_TEST_URI is set. Every test gets its
// own database, dropped afterwards.
func newTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	client, db, err := Connect(context.Background(), Config{
		URI:      uri,
		Database: "dashboard_test_" + uuid.NewString()[:8],
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

// preciseUser carries sub-millisecond, non-UTC timestamps, as the backend
// sends them.
func preciseUser() *domain.User {
	zone := time.FixedZone("MSK", 3*60*60)
	created := time.Date(2025, 3, 4, 10, 11, 12, 123456789, zone)
	last := time.Date(2025, 3, 5, 8, 0, 0, 987654321, zone)
	return &domain.User{ID: 4, Username: "master", Role: domain.RoleMaster, CreatedAt: created, LastLogin: &last}
}

func requireSameUser(t *testing.T, want, got *domain.User) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected user, got nil")
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.LastLogin == nil || !got.LastLogin.Equal(*want.LastLogin) {
		t.Fatalf("timestamps not restored exactly: created %v, last login %v", got.CreatedAt, got.LastLogin)
	}
	if _, off := got.CreatedAt.Zone(); off != 3*60*60 {
		t.Fatalf("expected zone offset kept, got %d", off)
	}
	if got.ID != want.ID || got.Username != want.Username || got.Role != want.Role {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestSessionDocument_BSONRoundTripKeepsTimestamps(t *testing.T) {
	user := preciseUser()
	doc, err := toDocument("auth-storage", domain.SessionSnapshot{User: user, Token: "tkn", IsAuthenticated: true}, time.Now())
	if err != nil {
		t.Fatalf("to document: %v", err)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded mongoSnapshot
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, err := fromDocument(decoded)
	if err != nil {
		t.Fatalf("from document: %v", err)
	}
	if got.Token != "tkn" || !got.IsAuthenticated {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	requireSameUser(t, user, got.User)
}

func TestSessionDocument_RejectsNewerVersion(t *testing.T) {
	_, err := fromDocument(mongoSnapshot{Name: "auth-storage", Version: domain.SnapshotVersion + 1})
	if !errors.Is(err, domain.ErrUnsupportedSnapshot) {
		t.Fatalf("expected ErrUnsupportedSnapshot, got %v", err)
	}
}

func TestSessionRepository_SaveLoadClear(t *testing.T) {
	repo := NewSessionRepository(newTestDatabase(t), "auth-storage")
	ctx := context.Background()

	if _, err := repo.Load(ctx); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}

	for _, token := range []string{"first", "second"} {
		err := repo.Save(ctx, domain.SessionSnapshot{
			User:            preciseUser(),
			Token:           token,
			IsAuthenticated: true,
		})
		if err != nil {
			t.Fatalf("save %s: %v", token, err)
		}
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "second" || !got.IsAuthenticated {
		t.Fatalf("expected the latest snapshot, got %+v", got)
	}
	requireSameUser(t, preciseUser(), got.User)

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := repo.Load(ctx); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound after clear, got %v", err)
	}
}

func TestAccountDirectory_CreateFindList(t *testing.T) {
	dir := NewAccountDirectory(newTestDatabase(t))
	ctx := context.Background()
	if err := dir.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	svc := accounts.NewService(dir, "secret", time.Hour)
	if err := accounts.Seed(ctx, svc, accounts.DevUsers); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := accounts.Seed(ctx, svc, accounts.DevUsers); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	users, err := dir.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != len(accounts.DevUsers) || users[0].ID != 1 {
		t.Fatalf("unexpected users: %+v", users)
	}

	if _, err := svc.Login(ctx, "manager", "manager"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := dir.FindByID(ctx, 999); !errors.Is(err, accounts.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
