package repository

import (
	"context"
	"fmt"
	"time"

	flightsrepo "cloudbase/internal/flights/repository"
	"cloudbase/pkg/config"
	mongotx "cloudbase/pkg/db/mongo"
	"cloudbase/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ScheduleRepository covers the write side of flight schedule
// management. Reads go through the flights repository.
type ScheduleRepository interface {
	Create(ctx context.Context, flight *model.Flight) error
	Update(ctx context.Context, id string, flight *model.Flight) (*mongo.UpdateResult, error)
	FindByRunwayAndDate(ctx context.Context, runwayNo, date string) ([]*model.Flight, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoScheduleRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(flightsrepo.CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoScheduleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoScheduleRepository) Create(ctx context.Context, flight *model.Flight) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	flight.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, flight)
	if err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		flight.ID = oid.Hex()
	}
	return nil
}

func (r *mongoScheduleRepository) Update(ctx context.Context, id string, flight *model.Flight) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid flight ID format: %s", id)
	}

	update := bson.M{"$set": bson.M{
		"airline_id":      flight.AirlineID,
		"source":          flight.Source,
		"destination":     flight.Destination,
		"date":            flight.Date,
		"departure":       flight.Departure,
		"arrival":         flight.Arrival,
		"available_seats": flight.AvailableSeats,
		"price":           flight.Price,
		"status":          flight.Status,
		"runway_no":       flight.RunwayNo,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update flight: %w", err)
	}

	return result, nil
}

func (r *mongoScheduleRepository) FindByRunwayAndDate(ctx context.Context, runwayNo, date string) ([]*model.Flight, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"runway_no": runwayNo,
		"date":      date,
	}
	opts := options.Find().SetSort(bson.D{{Key: "departure", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find flights by runway: %w", err)
	}
	defer cursor.Close(ctx)

	var flights []*model.Flight
	if err = cursor.All(ctx, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}

	return flights, nil
}

func (r *mongoScheduleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
