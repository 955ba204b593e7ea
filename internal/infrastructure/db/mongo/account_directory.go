package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/repairdesk/dashboard-state/internal/api/accounts"
	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

const (
	accountCollection = "dev_users"
	counterCollection = "counters"
)

// AccountDirectory stores dev API accounts in MongoDB. Numeric IDs come from a
// counter document so they match the backend's integer user IDs.
type AccountDirectory struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewAccountDirectory(db *mongo.Database) *AccountDirectory {
	return &AccountDirectory{
		coll:     db.Collection(accountCollection),
		counters: db.Collection(counterCollection),
	}
}

// EnsureIndexes creates the unique username index Create relies on.
func (d *AccountDirectory) EnsureIndexes(ctx context.Context) error {
	_, err := d.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

type mongoAccount struct {
	ID             int64  `bson:"_id"`
	Username       string `bson:"username"`
	PasswordHash   string `bson:"password_hash"`
	Email          string `bson:"email"`
	FullName       string `bson:"full_name"`
	Role           string `bson:"role"`
	Phone          string `bson:"phone,omitempty"`
	IsActive       bool   `bson:"is_active"`
	Specialization string `bson:"specialization,omitempty"`
	CreatedAt      int64  `bson:"created_at"`
}

func (d *AccountDirectory) Create(ctx context.Context, acc accounts.Account) (*accounts.Account, error) {
	id, err := d.nextID(ctx)
	if err != nil {
		return nil, err
	}

	u := acc.User
	doc := mongoAccount{
		ID:             id,
		Username:       u.Username,
		PasswordHash:   acc.PasswordHash,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           string(u.Role),
		Phone:          u.Phone,
		IsActive:       u.IsActive,
		Specialization: u.Specialization,
		CreatedAt:      u.CreatedAt.Unix(),
	}

	if _, err := d.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, accounts.ErrUserExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toAccount(), nil
}

func (d *AccountDirectory) FindByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	return d.findOne(ctx, bson.M{"username": username})
}

func (d *AccountDirectory) FindByID(ctx context.Context, id int64) (*accounts.Account, error) {
	return d.findOne(ctx, bson.M{"_id": id})
}

func (d *AccountDirectory) List(ctx context.Context) ([]domain.User, error) {
	cur, err := d.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toAccount().User)
	}
	return users, nil
}

func (d *AccountDirectory) findOne(ctx context.Context, filter bson.M) (*accounts.Account, error) {
	var doc mongoAccount
	if err := d.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, accounts.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toAccount(), nil
}

func (d *AccountDirectory) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := d.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": accountCollection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next account id: %w", err)
	}
	return counter.Seq, nil
}

func (doc mongoAccount) toAccount() *accounts.Account {
	return &accounts.Account{
		User: domain.User{
			ID:             doc.ID,
			Username:       doc.Username,
			Email:          doc.Email,
			FullName:       doc.FullName,
			Role:           domain.Role(doc.Role),
			Phone:          doc.Phone,
			IsActive:       doc.IsActive,
			CreatedAt:      unixToTime(doc.CreatedAt),
			Specialization: doc.Specialization,
		},
		PasswordHash: doc.PasswordHash,
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
