package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloudbase/internal/admin/repository"
	"cloudbase/internal/admin/validator"
	"cloudbase/internal/engine"
	flightserrors "cloudbase/internal/flights/errors"
	flightsrepo "cloudbase/internal/flights/repository"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	"cloudbase/pkg/model"
	"cloudbase/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// Two departures on the same runway must be at least this far apart.
const runwaySeparation = 30 * time.Minute

type ScheduleService interface {
	ScheduleFlight(ctx context.Context, flight *model.Flight) error
	EditSchedule(ctx context.Context, id string, updates *model.FlightUpdate) (*model.Flight, error)
	AdjustPricing(ctx context.Context, flightID string) error
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	lockRepo  repository.RunwayLockRepository
	flights   flightsrepo.FlightRepository
	pricing   engine.PricingEngine
	validator *validator.ScheduleValidator
	cfg       *config.Config
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	lockRepo repository.RunwayLockRepository,
	flights flightsrepo.FlightRepository,
	pricing engine.PricingEngine,
	scheduleValidator *validator.ScheduleValidator,
	cfg *config.Config,
) ScheduleService {
	return &scheduleService{
		repo:      repo,
		lockRepo:  lockRepo,
		flights:   flights,
		pricing:   pricing,
		validator: scheduleValidator,
		cfg:       cfg,
	}
}

func (s *scheduleService) ScheduleFlight(ctx context.Context, flight *model.Flight) error {
	s.applyDefaults(flight)
	s.sanitize(flight)
	if err := s.validate(flight); err != nil {
		return err
	}

	// Advisory lock to prevent race conditions on the runway slot
	lockID, err := s.acquireRunwayLock(ctx, flight.RunwayNo, flight.Date)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseRunwayLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release runway lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyRunwayClear(sessCtx, flight); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, flight); err != nil {
			return apperrors.Internal("Failed to schedule flight", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to schedule flight", "error", err)
		return err
	}

	s.cfg.Log.Info("Flight scheduled successfully",
		"id", flight.ID,
		"runway_no", flight.RunwayNo,
		"date", flight.Date,
		"departure", flight.Departure,
	)
	return nil
}

func (s *scheduleService) EditSchedule(ctx context.Context, id string, updates *model.FlightUpdate) (*model.Flight, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Flight ID cannot be empty")
	}

	existing, err := s.flights.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, flightserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Flight", id)
		}
		if errors.Is(err, flightserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid flight ID format")
		}
		return nil, apperrors.Internal("Failed to check flight existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Schedule update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeFlightUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyRunwayClear(sessCtx, merged); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return apperrors.Internal("Failed to update flight schedule", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update flight schedule", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Flight schedule updated successfully", "id", id)
	return merged, nil
}

func (s *scheduleService) AdjustPricing(ctx context.Context, flightID string) error {
	if flightID == "" {
		return apperrors.InvalidInput("Flight ID cannot be empty")
	}

	if _, err := s.flights.FindByID(ctx, flightID); err != nil {
		if errors.Is(err, flightserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Flight", flightID)
		}
		if errors.Is(err, flightserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid flight ID format")
		}
		return apperrors.Internal("Failed to check flight existence", err)
	}

	if err := s.pricing.Recalculate(ctx, flightID, model.PricingReasonManual); err != nil {
		s.cfg.Log.Error("Failed to trigger pricing recalculation", "flight_id", flightID, "error", err)
		return apperrors.Internal("Failed to trigger pricing recalculation", err)
	}

	s.cfg.Log.Info("Pricing recalculation requested", "flight_id", flightID)
	return nil
}

// --- Helpers ---

func (s *scheduleService) applyDefaults(f *model.Flight) {
	if f.Status == "" {
		f.Status = model.FlightStatusScheduled
	}
}

func (s *scheduleService) sanitize(f *model.Flight) {
	f.Source = sanitizer.SanitizeCityOrLabel(f.Source)
	f.Destination = sanitizer.SanitizeCityOrLabel(f.Destination)
	f.RunwayNo = sanitizer.TrimAndNormalize(f.RunwayNo)
}

func (s *scheduleService) validate(flight *model.Flight) error {
	if err := s.validator.Validate(flight); err != nil {
		s.cfg.Log.Warn("Flight validation failed", "error", err)
		return apperrors.Validation("Flight validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *scheduleService) mergeFlightUpdates(existing *model.Flight, updates *model.FlightUpdate) *model.Flight {
	merged := *existing

	if updates.Source != "" {
		merged.Source = updates.Source
	}
	if updates.Destination != "" {
		merged.Destination = updates.Destination
	}
	if updates.Date != "" {
		merged.Date = updates.Date
	}
	if updates.Departure != "" {
		merged.Departure = updates.Departure
	}
	if updates.Arrival != "" {
		merged.Arrival = updates.Arrival
	}
	if updates.AvailableSeats != nil {
		merged.AvailableSeats = *updates.AvailableSeats
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.RunwayNo != "" {
		merged.RunwayNo = updates.RunwayNo
	}

	return &merged
}

// verifyRunwayClear rejects the schedule when another flight departs
// from the same runway on the same date within the separation window.
// The flight's own record is skipped so edits do not conflict with
// themselves.
func (s *scheduleService) verifyRunwayClear(ctx context.Context, flight *model.Flight) error {
	existing, err := s.repo.FindByRunwayAndDate(ctx, flight.RunwayNo, flight.Date)
	if err != nil {
		return apperrors.Internal("Failed to check runway schedule", err)
	}

	departure, err := parseClock(flight.Departure)
	if err != nil {
		return apperrors.InvalidInput("Invalid departure time format")
	}

	for _, f := range existing {
		if f.ID == flight.ID {
			continue
		}
		other, err := parseClock(f.Departure)
		if err != nil {
			s.cfg.Log.Warn("Skipping flight with malformed departure time",
				"id", f.ID,
				"departure", f.Departure,
			)
			continue
		}
		if separation(departure, other) < runwaySeparation {
			return apperrors.ScheduleConflict(
				fmt.Sprintf("Runway %s is occupied around %s on %s", flight.RunwayNo, f.Departure, flight.Date),
				map[string]any{
					"runway_no":           flight.RunwayNo,
					"date":                flight.Date,
					"conflicting_flight":  f.ID,
					"existing_departure":  f.Departure,
					"requested_departure": flight.Departure,
				},
			)
		}
	}
	return nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}

func separation(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d
}

// acquireRunwayLock creates an advisory lock for a runway's daily
// schedule. Returns conflict error if another request holds it.
func (s *scheduleService) acquireRunwayLock(ctx context.Context, runwayNo, date string) (string, error) {
	lockID := fmt.Sprintf("runway_lock_%s_%s", runwayNo, date)

	lock := &model.RunwayLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(10 * time.Second),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This runway slot is currently being scheduled by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire runway lock", err)
	}

	return lockID, nil
}

func (s *scheduleService) releaseRunwayLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
