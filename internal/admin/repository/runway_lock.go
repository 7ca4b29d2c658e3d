package repository

import (
	"context"
	"time"

	"cloudbase/pkg/config"
	"cloudbase/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RunwayLockRepository provides operations for advisory locks
type RunwayLockRepository interface {
	Create(ctx context.Context, lock *model.RunwayLock) (*model.RunwayLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoRunwayLockRepository struct {
	collection *mongo.Collection
}

func NewRunwayLockRepository(cfg *config.Config) RunwayLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRunwayLockRepository{
		collection: db.Collection("Runway_locks"),
	}
}

// Returns duplicate key error if lock already exists
func (r *mongoRunwayLockRepository) Create(ctx context.Context, lock *model.RunwayLock) (*model.RunwayLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock
func (r *mongoRunwayLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
