package engine

import (
	"context"
	"fmt"
	"net/http"

	"cloudbase/pkg/client"
	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
)

// RoutingEngine resolves alternate flights for a canceled flight. The
// route computation is owned by an external service; responses are
// forwarded as-is.
type RoutingEngine interface {
	FindAlternatives(ctx context.Context, canceledFlightID string) ([]*model.Flight, error)
}

type httpRoutingEngine struct {
	client *client.HttpClient
	log    *logger.Logger
}

func NewHTTPRoutingEngine(httpClient *client.HttpClient, log *logger.Logger) RoutingEngine {
	return &httpRoutingEngine{
		client: httpClient,
		log:    log,
	}
}

func (e *httpRoutingEngine) FindAlternatives(ctx context.Context, canceledFlightID string) ([]*model.Flight, error) {
	resp, err := e.client.POST(ctx, "/v1/alternatives", map[string]string{
		"cancelled_flight_id": canceledFlightID,
	})
	if err != nil {
		return nil, fmt.Errorf("routing engine request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing engine returned status %d", resp.StatusCode)
	}

	var payload struct {
		Flights []*model.Flight `json:"flights"`
	}
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode routing engine response: %w", err)
	}

	e.log.Debug("Alternate flights resolved",
		"cancelled_flight_id", canceledFlightID,
		"count", len(payload.Flights),
	)
	return payload.Flights, nil
}
