package service

import (
	"context"
	"errors"
	"testing"
	"time"

	flightserrors "cloudbase/internal/flights/errors"
	"cloudbase/internal/flights/repository"
	"cloudbase/internal/payments/provider"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
)

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
	return nil, nil
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

type mockProvider struct {
	createIntentFunc func(ctx context.Context, amount int64, currency string, metadata map[string]string) (*provider.Intent, error)
	refundFunc       func(ctx context.Context, paymentIntentID string) (*provider.Refund, error)
}

func (m *mockProvider) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*provider.Intent, error) {
	if m.createIntentFunc != nil {
		return m.createIntentFunc(ctx, amount, currency, metadata)
	}
	return &provider.Intent{ID: "pi_test", ClientSecret: "secret_test", Amount: amount, Currency: currency}, nil
}

func (m *mockProvider) Refund(ctx context.Context, paymentIntentID string) (*provider.Refund, error) {
	if m.refundFunc != nil {
		return m.refundFunc(ctx, paymentIntentID)
	}
	return &provider.Refund{ID: "re_test", Status: "succeeded"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                   logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT}),
		PaymentCurrency:       "inr",
		PaymentRequestTimeout: 5 * time.Second,
	}
}

func newTestService(flights *mockFlightRepository, prov *mockProvider) PaymentService {
	return NewPaymentService(flights, prov, testConfig())
}

func TestIntentAmount(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		class      string
		passengers int
		want       int64
	}{
		{"economy single", 4500, model.TravelClassEconomy, 1, 450000},
		{"business single", 4500, model.TravelClassBusiness, 1, 675000},
		{"first single", 4500, model.TravelClassFirst, 1, 900000},
		{"economy family", 4500, model.TravelClassEconomy, 4, 1800000},
		{"fractional price rounds", 4500.4, model.TravelClassBusiness, 2, 1350200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intentAmount(tt.price, classMultipliers[tt.class], tt.passengers)
			if got != tt.want {
				t.Errorf("intentAmount(%v, %s, %d) = %d, want %d", tt.price, tt.class, tt.passengers, got, tt.want)
			}
		})
	}
}

func TestCreateIntent_DisplayAmountMatchesProvider(t *testing.T) {
	var providerAmount int64
	flights := &mockFlightRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Flight, error) {
			return &model.Flight{ID: id, Price: 7200}, nil
		},
	}
	prov := &mockProvider{
		createIntentFunc: func(ctx context.Context, amount int64, currency string, metadata map[string]string) (*provider.Intent, error) {
			providerAmount = amount
			return &provider.Intent{ID: "pi_1", ClientSecret: "cs_1", Amount: amount, Currency: currency}, nil
		},
	}

	svc := newTestService(flights, prov)
	result, err := svc.CreateIntent(context.Background(), "abc123", 3, model.TravelClassBusiness)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ClientSecret != "cs_1" {
		t.Errorf("expected client secret cs_1, got %s", result.ClientSecret)
	}
	if int64(result.Amount*100) != providerAmount {
		t.Errorf("display amount %v does not correspond to provider amount %d", result.Amount, providerAmount)
	}
}

func TestCreateIntent_MetadataCarriesBookingDetails(t *testing.T) {
	var gotMetadata map[string]string
	flights := &mockFlightRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Flight, error) {
			return &model.Flight{ID: id, Price: 4500}, nil
		},
	}
	prov := &mockProvider{
		createIntentFunc: func(ctx context.Context, amount int64, currency string, metadata map[string]string) (*provider.Intent, error) {
			gotMetadata = metadata
			return &provider.Intent{ID: "pi_1", ClientSecret: "cs_1", Amount: amount, Currency: currency}, nil
		},
	}

	svc := newTestService(flights, prov)
	if _, err := svc.CreateIntent(context.Background(), "abc123", 2, model.TravelClassFirst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMetadata["flight_id"] != "abc123" {
		t.Errorf("expected flight_id abc123, got %s", gotMetadata["flight_id"])
	}
	if gotMetadata["passenger_count"] != "2" {
		t.Errorf("expected passenger_count 2, got %s", gotMetadata["passenger_count"])
	}
	if gotMetadata["travel_class"] != model.TravelClassFirst {
		t.Errorf("expected travel_class first, got %s", gotMetadata["travel_class"])
	}
}

func TestCreateIntent_FlightNotFound(t *testing.T) {
	flights := &mockFlightRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Flight, error) {
			return nil, flightserrors.ErrNotFound
		},
	}

	svc := newTestService(flights, &mockProvider{})
	_, err := svc.CreateIntent(context.Background(), "missing", 1, model.TravelClassEconomy)

	if !apperrors.IsAppError(err) {
		t.Fatalf("expected AppError, got %v", err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}

func TestCreateIntent_ProviderFailure(t *testing.T) {
	flights := &mockFlightRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Flight, error) {
			return &model.Flight{ID: id, Price: 4500}, nil
		},
	}
	prov := &mockProvider{
		createIntentFunc: func(ctx context.Context, amount int64, currency string, metadata map[string]string) (*provider.Intent, error) {
			return nil, errors.New("stripe unavailable")
		},
	}

	svc := newTestService(flights, prov)
	_, err := svc.CreateIntent(context.Background(), "abc123", 1, model.TravelClassEconomy)

	if !apperrors.IsAppError(err) {
		t.Fatalf("expected AppError, got %v", err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodePaymentInit {
		t.Errorf("expected code %s, got %s", apperrors.CodePaymentInit, appErr.Code)
	}
	if appErr.StatusCode() != 502 {
		t.Errorf("expected status 502, got %d", appErr.StatusCode())
	}
}

func TestCreateIntent_RejectsInvalidInput(t *testing.T) {
	svc := newTestService(&mockFlightRepository{}, &mockProvider{})

	tests := []struct {
		name       string
		flightID   string
		passengers int
		class      string
	}{
		{"missing flight id", "", 1, model.TravelClassEconomy},
		{"zero passengers", "abc123", 0, model.TravelClassEconomy},
		{"unknown class", "abc123", 1, "premium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateIntent(context.Background(), tt.flightID, tt.passengers, tt.class)
			if !apperrors.IsAppError(err) {
				t.Fatalf("expected AppError, got %v", err)
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeInvalidInput {
				t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
			}
		})
	}
}

func TestRefund_NoTransaction(t *testing.T) {
	svc := newTestService(&mockFlightRepository{}, &mockProvider{})

	result := svc.Refund(context.Background(), "")
	if result.Status != model.RefundStatusNoPayment {
		t.Errorf("expected status %s, got %s", model.RefundStatusNoPayment, result.Status)
	}
}

func TestRefund_ProviderFailure(t *testing.T) {
	prov := &mockProvider{
		refundFunc: func(ctx context.Context, paymentIntentID string) (*provider.Refund, error) {
			return nil, errors.New("refund rejected")
		},
	}
	svc := newTestService(&mockFlightRepository{}, prov)

	result := svc.Refund(context.Background(), "pi_123")
	if result.Status != model.RefundStatusFailed {
		t.Errorf("expected status %s, got %s", model.RefundStatusFailed, result.Status)
	}
}

func TestRefund_Success(t *testing.T) {
	prov := &mockProvider{
		refundFunc: func(ctx context.Context, paymentIntentID string) (*provider.Refund, error) {
			return &provider.Refund{ID: "re_1", Status: "succeeded", Amount: 450000}, nil
		},
	}
	svc := newTestService(&mockFlightRepository{}, prov)

	result := svc.Refund(context.Background(), "pi_123")
	if result.Status != "succeeded" {
		t.Errorf("expected status succeeded, got %s", result.Status)
	}
	if result.ID != "re_1" {
		t.Errorf("expected refund ID re_1, got %s", result.ID)
	}
	if result.Amount != 4500 {
		t.Errorf("expected amount 4500, got %v", result.Amount)
	}
}
