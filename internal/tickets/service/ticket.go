package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloudbase/internal/engine"
	flightserrors "cloudbase/internal/flights/errors"
	flightsrepo "cloudbase/internal/flights/repository"
	"cloudbase/internal/notifier"
	paymentsservice "cloudbase/internal/payments/service"
	ticketserrors "cloudbase/internal/tickets/errors"
	"cloudbase/internal/tickets/repository"
	"cloudbase/internal/tickets/validator"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	"cloudbase/pkg/model"
	"cloudbase/pkg/sanitizer"
)

const eventPublishTimeout = 5 * time.Second

type TicketService interface {
	Book(ctx context.Context, ticket *model.Ticket) error
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	ListByEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Ticket, error)
	Cancel(ctx context.Context, id string) (*model.RefundResult, error)
}

type ticketService struct {
	repo      repository.TicketRepository
	flights   flightsrepo.FlightRepository
	payments  paymentsservice.PaymentService
	pricing   engine.PricingEngine
	notifier  notifier.Publisher
	validator *validator.TicketValidator
	cfg       *config.Config
}

func NewTicketService(
	repo repository.TicketRepository,
	flights flightsrepo.FlightRepository,
	payments paymentsservice.PaymentService,
	pricing engine.PricingEngine,
	notifierPub notifier.Publisher,
	ticketValidator *validator.TicketValidator,
	cfg *config.Config,
) TicketService {
	return &ticketService{
		repo:      repo,
		flights:   flights,
		payments:  payments,
		pricing:   pricing,
		notifier:  notifierPub,
		validator: ticketValidator,
		cfg:       cfg,
	}
}

func (s *ticketService) Book(ctx context.Context, ticket *model.Ticket) error {
	flight, err := s.findFlight(ctx, ticket.FlightID)
	if err != nil {
		return err
	}

	if flight.Status != model.FlightStatusScheduled {
		return apperrors.InvalidState(fmt.Sprintf("Flight is currently %s and cannot be booked", flight.Status))
	}

	s.applyDefaults(ticket, flight)
	s.sanitize(ticket)
	if err := s.validate(ticket); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, ticket); err != nil {
		s.cfg.Log.Error("Failed to create ticket", "flight_id", ticket.FlightID, "error", err)
		return apperrors.Internal("Failed to create ticket", err)
	}

	s.cfg.Log.Info("Ticket booked successfully",
		"id", ticket.ID,
		"flight_id", ticket.FlightID,
		"user_email", ticket.UserEmail,
		"payment_status", ticket.PaymentStatus,
	)

	go s.afterBooking(ticket, flight)

	return nil
}

func (s *ticketService) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Ticket ID cannot be empty")
	}

	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ticketserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ticket", id)
		}
		if errors.Is(err, ticketserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid ticket ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve ticket", err)
	}

	return ticket, nil
}

func (s *ticketService) ListByEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Ticket, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("Email cannot be empty")
	}

	tickets, err := s.repo.FindByEmail(ctx, email, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list tickets", "email", email, "error", err)
		return nil, apperrors.Internal("Failed to retrieve tickets", err)
	}

	return tickets, nil
}

// Cancel refunds the ticket's payment when one exists, then removes
// the ticket. A refund failure is reported in the result but never
// blocks the cancellation; a delete failure does.
func (s *ticketService) Cancel(ctx context.Context, id string) (*model.RefundResult, error) {
	ticket, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	refund := &model.RefundResult{Status: model.RefundStatusNoPayment}
	if ticket.PaymentStatus == model.PaymentStatusPaid && ticket.TransactionID != "" {
		refund = s.payments.Refund(ctx, ticket.TransactionID)
	}
	if refund.Status == model.RefundStatusFailed {
		s.cfg.Log.Warn("Cancellation proceeding despite refund failure",
			"ticket_id", id,
			"transaction_id", ticket.TransactionID,
		)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ticketserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ticket", id)
		}
		s.cfg.Log.Error("Failed to delete ticket", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel ticket", err)
	}

	s.cfg.Log.Info("Ticket canceled successfully",
		"id", id,
		"flight_id", ticket.FlightID,
		"refund_status", refund.Status,
	)

	go s.afterCancellation(ticket, refund)

	return refund, nil
}

// --- Helpers ---

func (s *ticketService) findFlight(ctx context.Context, flightID string) (*model.Flight, error) {
	if flightID == "" {
		return nil, apperrors.InvalidInput("Flight ID cannot be empty")
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

	return flight, nil
}

func (s *ticketService) applyDefaults(ticket *model.Ticket, flight *model.Flight) {
	if ticket.Source == "" {
		ticket.Source = flight.Source
	}
	if ticket.Destination == "" {
		ticket.Destination = flight.Destination
	}
	if ticket.FoodPreference == "" {
		ticket.FoodPreference = "None"
	}

	// Payment state follows strictly from whether a transaction was
	// supplied with the booking.
	if ticket.TransactionID != "" {
		ticket.PaymentStatus = model.PaymentStatusPaid
	} else {
		ticket.PaymentStatus = model.PaymentStatusPending
	}
}

func (s *ticketService) sanitize(t *model.Ticket) {
	t.Source = sanitizer.SanitizeCityOrLabel(t.Source)
	t.Destination = sanitizer.SanitizeCityOrLabel(t.Destination)
	t.SeatNo = sanitizer.TrimAndNormalize(t.SeatNo)
	t.ContactPhone = sanitizer.NormalizePhone(t.ContactPhone)
}

func (s *ticketService) validate(ticket *model.Ticket) error {
	if err := s.validator.Validate(ticket); err != nil {
		s.cfg.Log.Warn("Ticket validation failed", "error", err)
		return apperrors.Validation("Ticket validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// afterBooking fires the pricing trigger and confirmation email. Both
// are best effort and detached from the request context.
func (s *ticketService) afterBooking(ticket *model.Ticket, flight *model.Flight) {
	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()

	if err := s.pricing.Recalculate(ctx, ticket.FlightID, model.PricingReasonBooking); err != nil {
		s.cfg.Log.Warn("Failed to trigger pricing recalculation", "flight_id", ticket.FlightID, "error", err)
	}

	event := model.NotificationEvent{
		Type:       model.NotificationBookingConfirmed,
		Email:      ticket.UserEmail,
		TicketID:   ticket.ID,
		FlightID:   ticket.FlightID,
		FlightDate: flight.Date,
		Departure:  flight.Departure,
		Arrival:    flight.Arrival,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking notification", "ticket_id", ticket.ID, "error", err)
	}
}

func (s *ticketService) afterCancellation(ticket *model.Ticket, refund *model.RefundResult) {
	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()

	if err := s.pricing.Recalculate(ctx, ticket.FlightID, model.PricingReasonCancellation); err != nil {
		s.cfg.Log.Warn("Failed to trigger pricing recalculation", "flight_id", ticket.FlightID, "error", err)
	}

	event := model.NotificationEvent{
		Type:         model.NotificationBookingCanceled,
		Email:        ticket.UserEmail,
		TicketID:     ticket.ID,
		FlightID:     ticket.FlightID,
		RefundStatus: refund.Status,
		RefundID:     refund.ID,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish cancellation notification", "ticket_id", ticket.ID, "error", err)
	}
}
