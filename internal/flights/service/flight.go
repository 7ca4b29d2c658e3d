package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cloudbase/internal/engine"
	flightserrors "cloudbase/internal/flights/errors"
	"cloudbase/internal/flights/repository"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	"cloudbase/pkg/model"
	"cloudbase/pkg/sanitizer"

	"github.com/redis/go-redis/v9"
)

type FlightService interface {
	Search(ctx context.Context, q repository.SearchQuery) ([]*model.Flight, error)
	GetStatus(ctx context.Context, id string) (*model.FlightWithAirline, error)
	FindAlternatives(ctx context.Context, canceledFlightID string) ([]*model.Flight, error)
	GetRoutes(ctx context.Context, limit int, offset int64) ([]*model.Flight, int64, error)
}

type flightService struct {
	repo    repository.FlightRepository
	routing engine.RoutingEngine
	cache   redis.Cmdable
	cfg     *config.Config
}

func NewFlightService(
	repo repository.FlightRepository,
	routing engine.RoutingEngine,
	cache redis.Cmdable,
	cfg *config.Config,
) FlightService {
	return &flightService{
		repo:    repo,
		routing: routing,
		cache:   cache,
		cfg:     cfg,
	}
}

func (s *flightService) Search(ctx context.Context, q repository.SearchQuery) ([]*model.Flight, error) {
	q.Source = sanitizer.SanitizeCityOrLabel(q.Source)
	q.Destination = sanitizer.SanitizeCityOrLabel(q.Destination)
	if q.Source == "" || q.Destination == "" {
		return nil, apperrors.InvalidInput("source and destination are required")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, apperrors.InvalidInput("min_price cannot exceed max_price")
	}

	cacheKey := s.searchCacheKey(q)
	if cached := s.cachedSearch(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	flights, err := s.repo.Search(ctx, q)
	if err != nil {
		s.cfg.Log.Error("Failed to search flights",
			"source", q.Source,
			"destination", q.Destination,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search flights", err)
	}

	s.cacheSearch(ctx, cacheKey, flights)
	return flights, nil
}

func (s *flightService) GetStatus(ctx context.Context, id string) (*model.FlightWithAirline, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Flight ID cannot be empty")
	}

	flight, err := s.repo.FindByIDWithAirline(ctx, id)
	if err != nil {
		if errors.Is(err, flightserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Flight", id)
		}
		if errors.Is(err, flightserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid flight ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve flight status", err)
	}

	return flight, nil
}

func (s *flightService) FindAlternatives(ctx context.Context, canceledFlightID string) ([]*model.Flight, error) {
	if canceledFlightID == "" {
		return nil, apperrors.InvalidInput("cancelled_flight_id is required")
	}

	flights, err := s.routing.FindAlternatives(ctx, canceledFlightID)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve alternate flights",
			"cancelled_flight_id", canceledFlightID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve alternate flights", err)
	}

	return flights, nil
}

func (s *flightService) GetRoutes(ctx context.Context, limit int, offset int64) ([]*model.Flight, int64, error) {
	var count int64
	var flights []*model.Flight
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count flights", "error", errCount)
			errCount = apperrors.Internal("Failed to count flights", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		flights, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list flights", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve flights", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return flights, count, nil
}

// --- Cache helpers ---

func (s *flightService) searchCacheKey(q repository.SearchQuery) string {
	minPrice, maxPrice := "", ""
	if q.MinPrice != nil {
		minPrice = fmt.Sprintf("%.2f", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		maxPrice = fmt.Sprintf("%.2f", *q.MaxPrice)
	}
	return fmt.Sprintf("flights:search:%s:%s:%s:%s:%s", q.Source, q.Destination, q.Date, minPrice, maxPrice)
}

func (s *flightService) cachedSearch(ctx context.Context, key string) []*model.Flight {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.cfg.Log.Warn("Flight cache read failed", "key", key, "error", err)
		}
		return nil
	}

	var flights []*model.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		s.cfg.Log.Warn("Flight cache entry corrupted", "key", key, "error", err)
		return nil
	}

	return flights
}

func (s *flightService) cacheSearch(ctx context.Context, key string, flights []*model.Flight) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(flights)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, data, s.cfg.FlightCacheTTL).Err(); err != nil {
		s.cfg.Log.Warn("Flight cache write failed", "key", key, "error", err)
	}
}
