package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	flightserrors "cloudbase/internal/flights/errors"
	"cloudbase/pkg/config"
	"cloudbase/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName        = "Flights"
	AirlineCollectionName = "Airlines"
)

// SearchQuery holds the flight search filters. Source and Destination
// are required; the rest narrow the result set.
type SearchQuery struct {
	Source      string
	Destination string
	Date        string
	MinPrice    *float64
	MaxPrice    *float64
}

type FlightRepository interface {
	Search(ctx context.Context, q SearchQuery) ([]*model.Flight, error)
	FindByID(ctx context.Context, id string) (*model.Flight, error)
	FindByIDWithAirline(ctx context.Context, id string) (*model.FlightWithAirline, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Flight, error)
	Count(ctx context.Context) (int64, error)
}

type mongoFlightRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoFlightRepository(cfg *config.Config) FlightRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFlightRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout unless it is already a
// transaction session context, which must not be re-wrapped.
func (r *mongoFlightRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoFlightRepository) Search(ctx context.Context, q SearchQuery) ([]*model.Flight, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"source":      q.Source,
		"destination": q.Destination,
		"status":      bson.M{"$ne": model.FlightStatusCanceled},
	}
	if q.Date != "" {
		filter["date"] = q.Date
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "departure", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}
	defer cursor.Close(ctx)

	var flights []*model.Flight
	if err = cursor.All(ctx, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}

	return flights, nil
}

func (r *mongoFlightRepository) FindByID(ctx context.Context, id string) (*model.Flight, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", flightserrors.ErrInvalidID, id)
	}

	var flight model.Flight
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&flight)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, flightserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find flight: %w", err)
	}

	return &flight, nil
}

func (r *mongoFlightRepository) FindByIDWithAirline(ctx context.Context, id string) (*model.FlightWithAirline, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", flightserrors.ErrInvalidID, id)
	}

	// Left join to airlines: a flight with a dangling airline_id still
	// resolves, with airline_name null. airline_id is stored as a hex
	// string, so it is cast before the lookup.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": objectID}}},
		{{Key: "$addFields", Value: bson.M{
			"airline_oid": bson.M{
				"$convert": bson.M{"input": "$airline_id", "to": "objectId", "onError": nil},
			},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         AirlineCollectionName,
			"localField":   "airline_oid",
			"foreignField": "_id",
			"as":           "airline",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"airline_name": bson.M{"$first": "$airline.name"},
		}}},
		{{Key: "$project", Value: bson.M{"airline": 0, "airline_oid": 0}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate flight status: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*model.FlightWithAirline
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode flight status: %w", err)
	}
	if len(results) == 0 {
		return nil, flightserrors.ErrNotFound
	}

	return results[0], nil
}

func (r *mongoFlightRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Flight, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "departure", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find flights: %w", err)
	}
	defer cursor.Close(ctx)

	var flights []*model.Flight
	if err = cursor.All(ctx, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}

	return flights, nil
}

func (r *mongoFlightRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count flights: %w", err)
	}

	return count, nil
}
