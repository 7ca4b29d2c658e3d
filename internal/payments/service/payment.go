package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	flightserrors "cloudbase/internal/flights/errors"
	flightsrepo "cloudbase/internal/flights/repository"
	"cloudbase/internal/payments/provider"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	"cloudbase/pkg/model"
)

// Class multipliers applied on top of a flight's base price.
var classMultipliers = map[string]float64{
	model.TravelClassEconomy:  1.0,
	model.TravelClassBusiness: 1.5,
	model.TravelClassFirst:    2.0,
}

// IntentResult is returned to the client after intent creation. Amount
// is in major currency units; the provider holds it in minor units.
type IntentResult struct {
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
}

type PaymentService interface {
	CreateIntent(ctx context.Context, flightID string, passengerCount int, travelClass string) (*IntentResult, error)
	Refund(ctx context.Context, transactionID string) *model.RefundResult
}

type paymentService struct {
	flights  flightsrepo.FlightRepository
	provider provider.Provider
	cfg      *config.Config
}

func NewPaymentService(
	flights flightsrepo.FlightRepository,
	paymentProvider provider.Provider,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		flights:  flights,
		provider: paymentProvider,
		cfg:      cfg,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, flightID string, passengerCount int, travelClass string) (*IntentResult, error) {
	if flightID == "" {
		return nil, apperrors.InvalidInput("flight_id is required")
	}
	if passengerCount < 1 {
		return nil, apperrors.InvalidInput("passenger_count must be at least 1")
	}
	if travelClass == "" {
		travelClass = model.TravelClassEconomy
	}
	multiplier, ok := classMultipliers[travelClass]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown travel class: %s", travelClass))
	}

	flight, err := s.flights.FindByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, flightserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Flight", flightID)
		}
		if errors.Is(err, flightserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid flight ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve flight", err)
	}

	amount := intentAmount(flight.Price, multiplier, passengerCount)

	providerCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentRequestTimeout)
	defer cancel()

	intent, err := s.provider.CreateIntent(providerCtx, amount, s.cfg.PaymentCurrency, map[string]string{
		"flight_id":       flightID,
		"passenger_count": strconv.Itoa(passengerCount),
		"travel_class":    travelClass,
	})
	if err != nil {
		s.cfg.Log.Error("Payment intent creation failed",
			"flight_id", flightID,
			"amount", amount,
			"error", err,
		)
		return nil, apperrors.PaymentInit("Failed to create payment intent", err)
	}

	s.cfg.Log.Info("Payment intent created",
		"flight_id", flightID,
		"intent_id", intent.ID,
		"amount", intent.Amount,
		"currency", intent.Currency,
	)

	return &IntentResult{
		ClientSecret: intent.ClientSecret,
		Amount:       float64(intent.Amount) / 100,
	}, nil
}

// intentAmount converts a per-seat price into the provider's minor
// currency units: round(price * multiplier) per seat, times passenger
// count, times 100.
func intentAmount(price, multiplier float64, passengerCount int) int64 {
	perSeat := int64(math.Round(price * multiplier))
	return perSeat * int64(passengerCount) * 100
}

// Refund never fails the caller: provider errors collapse into the
// "failed" sentinel so a cancellation can proceed regardless.
func (s *paymentService) Refund(ctx context.Context, transactionID string) *model.RefundResult {
	if transactionID == "" {
		return &model.RefundResult{Status: model.RefundStatusNoPayment}
	}

	providerCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentRequestTimeout)
	defer cancel()

	ref, err := s.provider.Refund(providerCtx, transactionID)
	if err != nil {
		s.cfg.Log.Error("Refund attempt failed",
			"transaction_id", transactionID,
			"error", err,
		)
		return &model.RefundResult{Status: model.RefundStatusFailed}
	}

	s.cfg.Log.Info("Refund issued",
		"transaction_id", transactionID,
		"refund_id", ref.ID,
		"status", ref.Status,
	)

	return &model.RefundResult{
		Status: ref.Status,
		ID:     ref.ID,
		Amount: float64(ref.Amount) / 100,
	}
}
