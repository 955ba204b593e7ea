package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

const stateCollection = "client_state"

// SessionRepository stores one document per storage name in client_state.
type SessionRepository struct {
	coll *mongo.Collection
	name string
}

func NewSessionRepository(db *mongo.Database, name string) *SessionRepository {
	return &SessionRepository{coll: db.Collection(stateCollection), name: name}
}

// mongoSnapshot keeps the encoded snapshot as opaque bytes. BSON datetimes
// hold only milliseconds in UTC, so storing the user as a subdocument would
// not restore its timestamps exactly.
type mongoSnapshot struct {
	Name      string `bson:"_id"`
	Version   int    `bson:"version"`
	Data      []byte `bson:"data"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (r *SessionRepository) Load(ctx context.Context) (*domain.SessionSnapshot, error) {
	var doc mongoSnapshot
	if err := r.coll.FindOne(ctx, bson.M{"_id": r.name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return fromDocument(doc)
}

func (r *SessionRepository) Save(ctx context.Context, snapshot domain.SessionSnapshot) error {
	doc, err := toDocument(r.name, snapshot, time.Now())
	if err != nil {
		return err
	}

	_, err = r.coll.ReplaceOne(ctx, bson.M{"_id": r.name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func toDocument(name string, snapshot domain.SessionSnapshot, now time.Time) (mongoSnapshot, error) {
	data, err := snapshot.Encode()
	if err != nil {
		return mongoSnapshot{}, fmt.Errorf("encode session: %w", err)
	}
	return mongoSnapshot{
		Name:      name,
		Version:   domain.SnapshotVersion,
		Data:      data,
		UpdatedAt: now.UTC().Unix(),
	}, nil
}

func fromDocument(doc mongoSnapshot) (*domain.SessionSnapshot, error) {
	if doc.Version > domain.SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnsupportedSnapshot, doc.Version)
	}
	return domain.DecodeSessionSnapshot(doc.Data)
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": r.name}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
