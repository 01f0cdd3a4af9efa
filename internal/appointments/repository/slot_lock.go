package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
)

const LockCollectionName = "Slot_locks"

// SlotLockRepository holds short-lived advisory locks keyed by slot
// coordinates. The collection carries a unique _id and a TTL index on
// expires_at, so an abandoned lock disappears on its own.
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	// FindByID returns (nil, nil) when no lock document exists.
	FindByID(ctx context.Context, lockID string) (*model.SlotLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create returns the driver's duplicate key error when the lock is already
// held; callers translate that into a conflict.
func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoSlotLockRepository) FindByID(ctx context.Context, lockID string) (*model.SlotLock, error) {
	var lock model.SlotLock
	if err := r.collection.FindOne(ctx, bson.M{"_id": lockID}).Decode(&lock); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &lock, nil
}

func (r *mongoSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
