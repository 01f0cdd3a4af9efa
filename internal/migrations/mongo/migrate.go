package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appointmentrepository "github.com/tecmax-dev/sisvida-sub008/internal/appointments/repository"
	blockrepository "github.com/tecmax-dev/sisvida-sub008/internal/blocks/repository"
	schedulerepository "github.com/tecmax-dev/sisvida-sub008/internal/schedules/repository"
	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
)

var (
	schedulesIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "professional_id", Value: 1},
				{Key: "day_of_week", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	blocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "professional_id", Value: 1},
		}},
	}

	appointmentsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "professional_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	// expire_after 0 lets Mongo reap a lock as soon as expires_at passes.
	slotLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

// EnsureIndexes creates the collection indexes the service relies on. It runs
// at startup and is idempotent; CreateMany is a no-op for indexes that
// already exist.
func EnsureIndexes(ctx context.Context, cfg *config.Config) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	collections := map[string][]mongo.IndexModel{
		schedulerepository.CollectionName:        schedulesIndexes,
		blockrepository.CollectionName:           blocksIndexes,
		appointmentrepository.CollectionName:     appointmentsIndexes,
		appointmentrepository.LockCollectionName: slotLocksIndexes,
	}

	for name, models := range collections {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
		cfg.Log.Info("Ensured indexes", "collection", name)
	}

	return nil
}
