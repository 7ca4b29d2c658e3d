package service

import (
	"context"
	"testing"
	"time"

	flightserrors "cloudbase/internal/flights/errors"
	"cloudbase/internal/flights/repository"
	paymentsservice "cloudbase/internal/payments/service"
	ticketserrors "cloudbase/internal/tickets/errors"
	"cloudbase/internal/tickets/validator"
	"cloudbase/pkg/config"
	mongotx "cloudbase/pkg/db/mongo"
	apperrors "cloudbase/pkg/errors"
	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
)

type mockTicketRepository struct {
	createFunc   func(ctx context.Context, ticket *model.Ticket) error
	findByIDFunc func(ctx context.Context, id string) (*model.Ticket, error)
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockTicketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, ticket)
	}
	ticket.ID = "65f000000000000000000001"
	return nil
}

func (m *mockTicketRepository) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, ticketserrors.ErrNotFound
}

func (m *mockTicketRepository) FindByEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Ticket, error) {
	return nil, nil
}

func (m *mockTicketRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTicketRepository) CountByFlight(ctx context.Context, flightID string) (int64, error) {
	return 0, nil
}

func (m *mockTicketRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

type mockFlightRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Flight, error)
}

func (m *mockFlightRepository) Search(ctx context.Context, q repository.SearchQuery) ([]*model.Flight, error) {
	return nil, nil
}

func (m *mockFlightRepository) FindByID(ctx context.Context, id string) (*model.Flight, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return scheduledFlight(), nil
}

func (m *mockFlightRepository) FindByIDWithAirline(ctx context.Context, id string) (*model.FlightWithAirline, error) {
	return nil, nil
}

func (m *mockFlightRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Flight, error) {
	return nil, nil
}

func (m *mockFlightRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockPaymentService struct {
	refundFunc func(ctx context.Context, transactionID string) *model.RefundResult
	called     bool
}

func (m *mockPaymentService) CreateIntent(ctx context.Context, flightID string, passengerCount int, travelClass string) (*paymentsservice.IntentResult, error) {
	return nil, nil
}

func (m *mockPaymentService) Refund(ctx context.Context, transactionID string) *model.RefundResult {
	m.called = true
	if m.refundFunc != nil {
		return m.refundFunc(ctx, transactionID)
	}
	return &model.RefundResult{Status: "succeeded", ID: "re_1"}
}

type mockPricingEngine struct{}

func (m *mockPricingEngine) Recalculate(ctx context.Context, flightID, reason string) error {
	return nil
}

type mockNotifier struct{}

func (m *mockNotifier) Publish(ctx context.Context, event model.NotificationEvent) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:          logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func scheduledFlight() *model.Flight {
	return &model.Flight{
		ID:          "65f000000000000000000010",
		Source:      "delhi",
		Destination: "mumbai",
		Date:        "2026-09-15",
		Departure:   "08:30",
		Arrival:     "10:45",
		Status:      model.FlightStatusScheduled,
		Price:       4500,
	}
}

func validTicket() *model.Ticket {
	return &model.Ticket{
		FlightID:    "65f000000000000000000010",
		UserEmail:   "traveler@example.com",
		PassengerNo: 2,
		Class:       model.TravelClassEconomy,
		SeatNo:      "14A",
	}
}

func newTestService(repo *mockTicketRepository, flights *mockFlightRepository, payments *mockPaymentService) TicketService {
	cfg := testConfig()
	return NewTicketService(
		repo,
		flights,
		payments,
		&mockPricingEngine{},
		&mockNotifier{},
		validator.NewTicketValidator(cfg.Log),
		cfg,
	)
}

func TestBook_RejectsNonScheduledFlights(t *testing.T) {
	statuses := []string{
		model.FlightStatusAir,
		model.FlightStatusCanceled,
		model.FlightStatusLanded,
		model.FlightStatusDelayed,
	}

	for _, status := range statuses {
		t.Run(status, func(t *testing.T) {
			flights := &mockFlightRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Flight, error) {
					f := scheduledFlight()
					f.Status = status
					return f, nil
				},
			}

			svc := newTestService(&mockTicketRepository{}, flights, &mockPaymentService{})
			err := svc.Book(context.Background(), validTicket())

			if !apperrors.IsAppError(err) {
				t.Fatalf("expected AppError, got %v", err)
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeInvalidState {
				t.Errorf("expected code %s, got %s", apperrors.CodeInvalidState, appErr.Code)
			}
			if appErr.StatusCode() != 409 {
				t.Errorf("expected status 409, got %d", appErr.StatusCode())
			}
		})
	}
}

func TestBook_DerivesPaymentStatus(t *testing.T) {
	tests := []struct {
		name          string
		transactionID string
		want          string
	}{
		{"with transaction", "pi_abc123", model.PaymentStatusPaid},
		{"without transaction", "", model.PaymentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *model.Ticket
			repo := &mockTicketRepository{
				createFunc: func(ctx context.Context, ticket *model.Ticket) error {
					created = ticket
					return nil
				},
			}

			svc := newTestService(repo, &mockFlightRepository{}, &mockPaymentService{})
			ticket := validTicket()
			ticket.TransactionID = tt.transactionID
			ticket.PaymentStatus = "Paid" // client claims are ignored

			if err := svc.Book(context.Background(), ticket); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if created.PaymentStatus != tt.want {
				t.Errorf("expected payment status %s, got %s", tt.want, created.PaymentStatus)
			}
		})
	}
}

func TestBook_FillsRouteFromFlight(t *testing.T) {
	var created *model.Ticket
	repo := &mockTicketRepository{
		createFunc: func(ctx context.Context, ticket *model.Ticket) error {
			created = ticket
			return nil
		},
	}

	svc := newTestService(repo, &mockFlightRepository{}, &mockPaymentService{})
	ticket := validTicket()
	ticket.Source = ""
	ticket.Destination = ""

	if err := svc.Book(context.Background(), ticket); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Source != "delhi" || created.Destination != "mumbai" {
		t.Errorf("expected route delhi->mumbai, got %s->%s", created.Source, created.Destination)
	}
}

func TestBook_FlightNotFound(t *testing.T) {
	flights := &mockFlightRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Flight, error) {
			return nil, flightserrors.ErrNotFound
		},
	}

	svc := newTestService(&mockTicketRepository{}, flights, &mockPaymentService{})
	err := svc.Book(context.Background(), validTicket())

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}

func TestBook_RejectsInvalidTicket(t *testing.T) {
	svc := newTestService(&mockTicketRepository{}, &mockFlightRepository{}, &mockPaymentService{})

	ticket := validTicket()
	ticket.PassengerNo = 11

	err := svc.Book(context.Background(), ticket)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}

func TestCancel_RefundsPaidTickets(t *testing.T) {
	repo := &mockTicketRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Ticket, error) {
			tk := validTicket()
			tk.ID = id
			tk.PaymentStatus = model.PaymentStatusPaid
			tk.TransactionID = "pi_abc123"
			return tk, nil
		},
	}
	payments := &mockPaymentService{}

	svc := newTestService(repo, &mockFlightRepository{}, payments)
	refund, err := svc.Cancel(context.Background(), "65f000000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !payments.called {
		t.Error("expected refund to be attempted")
	}
	if refund.Status != "succeeded" {
		t.Errorf("expected refund status succeeded, got %s", refund.Status)
	}
}

func TestCancel_SkipsRefundForUnpaidTickets(t *testing.T) {
	repo := &mockTicketRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Ticket, error) {
			tk := validTicket()
			tk.ID = id
			tk.PaymentStatus = model.PaymentStatusPending
			return tk, nil
		},
	}
	payments := &mockPaymentService{}

	svc := newTestService(repo, &mockFlightRepository{}, payments)
	refund, err := svc.Cancel(context.Background(), "65f000000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payments.called {
		t.Error("expected no refund attempt for unpaid ticket")
	}
	if refund.Status != model.RefundStatusNoPayment {
		t.Errorf("expected refund status %s, got %s", model.RefundStatusNoPayment, refund.Status)
	}
}

func TestCancel_ProceedsDespiteRefundFailure(t *testing.T) {
	deleted := false
	repo := &mockTicketRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Ticket, error) {
			tk := validTicket()
			tk.ID = id
			tk.PaymentStatus = model.PaymentStatusPaid
			tk.TransactionID = "pi_abc123"
			return tk, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	payments := &mockPaymentService{
		refundFunc: func(ctx context.Context, transactionID string) *model.RefundResult {
			return &model.RefundResult{Status: model.RefundStatusFailed}
		},
	}

	svc := newTestService(repo, &mockFlightRepository{}, payments)
	refund, err := svc.Cancel(context.Background(), "65f000000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !deleted {
		t.Error("expected ticket to be deleted despite refund failure")
	}
	if refund.Status != model.RefundStatusFailed {
		t.Errorf("expected refund status %s, got %s", model.RefundStatusFailed, refund.Status)
	}
}

func TestCancel_SurfacesDeleteFailure(t *testing.T) {
	repo := &mockTicketRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Ticket, error) {
			tk := validTicket()
			tk.ID = id
			return tk, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			return context.DeadlineExceeded
		},
	}

	svc := newTestService(repo, &mockFlightRepository{}, &mockPaymentService{})
	_, err := svc.Cancel(context.Background(), "65f000000000000000000001")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInternal {
		t.Errorf("expected code %s, got %s", apperrors.CodeInternal, appErr.Code)
	}
}

func TestCancel_TicketNotFound(t *testing.T) {
	svc := newTestService(&mockTicketRepository{}, &mockFlightRepository{}, &mockPaymentService{})

	_, err := svc.Cancel(context.Background(), "65f000000000000000000099")
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}
