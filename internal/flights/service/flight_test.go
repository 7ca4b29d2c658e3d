package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	flightserrors "cloudbase/internal/flights/errors"
	"cloudbase/internal/flights/repository"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
)

type mockFlightRepository struct {
	searchFunc          func(ctx context.Context, q repository.SearchQuery) ([]*model.Flight, error)
	findByIDFunc        func(ctx context.Context, id string) (*model.Flight, error)
	findByIDWithAirline func(ctx context.Context, id string) (*model.FlightWithAirline, error)
	findAllFunc         func(ctx context.Context, limit int, offset int64) ([]*model.Flight, error)
	countFunc           func(ctx context.Context) (int64, error)
}

func (m *mockFlightRepository) Search(ctx context.Context, q repository.SearchQuery) ([]*model.Flight, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, q)
	}
	return []*model.Flight{}, nil
}

func (m *mockFlightRepository) FindByID(ctx context.Context, id string) (*model.Flight, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, flightserrors.ErrNotFound
}

func (m *mockFlightRepository) FindByIDWithAirline(ctx context.Context, id string) (*model.FlightWithAirline, error) {
	if m.findByIDWithAirline != nil {
		return m.findByIDWithAirline(ctx, id)
	}
	return nil, flightserrors.ErrNotFound
}

func (m *mockFlightRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Flight, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Flight{}, nil
}

func (m *mockFlightRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

type mockRoutingEngine struct {
	findAlternativesFunc func(ctx context.Context, canceledFlightID string) ([]*model.Flight, error)
}

func (m *mockRoutingEngine) FindAlternatives(ctx context.Context, canceledFlightID string) ([]*model.Flight, error) {
	if m.findAlternativesFunc != nil {
		return m.findAlternativesFunc(ctx, canceledFlightID)
	}
	return []*model.Flight{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:    5 * time.Second,
		FlightCacheTTL: 30 * time.Second,
	}
}

func TestSearch_RequiresSourceAndDestination(t *testing.T) {
	svc := NewFlightService(&mockFlightRepository{}, &mockRoutingEngine{}, nil, testConfig())

	tests := []struct {
		name string
		q    repository.SearchQuery
	}{
		{"missing source", repository.SearchQuery{Destination: "BOM"}},
		{"missing destination", repository.SearchQuery{Source: "DEL"}},
		{"missing both", repository.SearchQuery{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.q)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeInvalidInput {
				t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
			}
		})
	}
}

func TestSearch_RejectsInvertedPriceBounds(t *testing.T) {
	svc := NewFlightService(&mockFlightRepository{}, &mockRoutingEngine{}, nil, testConfig())

	minPrice, maxPrice := 5000.0, 1000.0
	_, err := svc.Search(context.Background(), repository.SearchQuery{
		Source:      "DEL",
		Destination: "BOM",
		MinPrice:    &minPrice,
		MaxPrice:    &maxPrice,
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", apperrors.AsAppError(err).Code)
	}
}

func TestSearch_PassesFiltersToRepository(t *testing.T) {
	var captured repository.SearchQuery
	minPrice, maxPrice := 1000.0, 5000.0

	repo := &mockFlightRepository{
		searchFunc: func(ctx context.Context, q repository.SearchQuery) ([]*model.Flight, error) {
			captured = q
			return []*model.Flight{{ID: "665f1f77bcf86cd799439011", Source: "DEL", Destination: "BOM"}}, nil
		},
	}
	svc := NewFlightService(repo, &mockRoutingEngine{}, nil, testConfig())

	query := repository.SearchQuery{
		Source:      "New Delhi",
		Destination: "Mumbai",
		Date:        "2024-05-01",
		MinPrice:    &minPrice,
		MaxPrice:    &maxPrice,
	}
	flights, err := svc.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flights) != 1 {
		t.Fatalf("expected 1 flight, got %d", len(flights))
	}

	want := query
	want.Source = "new_delhi"
	want.Destination = "mumbai"
	if !reflect.DeepEqual(captured, want) {
		t.Errorf("repository received %+v, want %+v", captured, want)
	}
}

func TestGetStatus_NotFound(t *testing.T) {
	svc := NewFlightService(&mockFlightRepository{}, &mockRoutingEngine{}, nil, testConfig())

	_, err := svc.GetStatus(context.Background(), "665f1f77bcf86cd799439011")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", apperrors.AsAppError(err).Code)
	}
}

func TestGetStatus_InvalidID(t *testing.T) {
	repo := &mockFlightRepository{
		findByIDWithAirline: func(ctx context.Context, id string) (*model.FlightWithAirline, error) {
			return nil, flightserrors.ErrInvalidID
		},
	}
	svc := NewFlightService(repo, &mockRoutingEngine{}, nil, testConfig())

	_, err := svc.GetStatus(context.Background(), "not-an-id")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", apperrors.AsAppError(err).Code)
	}
}

func TestGetStatus_RepeatedCallsReturnIdenticalFields(t *testing.T) {
	airlineName := "Acme Air"
	stored := &model.FlightWithAirline{
		Flight: model.Flight{
			ID:          "665f1f77bcf86cd799439011",
			Source:      "DEL",
			Destination: "BOM",
			Date:        "2024-05-01",
			Departure:   "09:30",
			Arrival:     "11:45",
			Price:       4999.0,
			Status:      model.FlightStatusScheduled,
			RunwayNo:    "1",
		},
		AirlineName: &airlineName,
	}
	repo := &mockFlightRepository{
		findByIDWithAirline: func(ctx context.Context, id string) (*model.FlightWithAirline, error) {
			copied := *stored
			return &copied, nil
		},
	}
	svc := NewFlightService(repo, &mockRoutingEngine{}, nil, testConfig())

	first, err := svc.GetStatus(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GetStatus(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated status lookups differ: %+v vs %+v", first, second)
	}
}

func TestFindAlternatives_DelegatesToRoutingEngine(t *testing.T) {
	var captured string
	routing := &mockRoutingEngine{
		findAlternativesFunc: func(ctx context.Context, canceledFlightID string) ([]*model.Flight, error) {
			captured = canceledFlightID
			return []*model.Flight{{ID: "665f1f77bcf86cd799439012"}}, nil
		},
	}
	svc := NewFlightService(&mockFlightRepository{}, routing, nil, testConfig())

	flights, err := svc.FindAlternatives(context.Background(), "665f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured != "665f1f77bcf86cd799439011" {
		t.Errorf("routing engine received %q", captured)
	}
	if len(flights) != 1 {
		t.Errorf("expected 1 alternate flight, got %d", len(flights))
	}
}

func TestFindAlternatives_RequiresFlightID(t *testing.T) {
	svc := NewFlightService(&mockFlightRepository{}, &mockRoutingEngine{}, nil, testConfig())

	_, err := svc.FindAlternatives(context.Background(), "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", apperrors.AsAppError(err).Code)
	}
}
