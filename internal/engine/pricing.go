package engine

import (
	"context"
	"time"

	"cloudbase/pkg/kafka"
	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
)

// PricingEngine asks the external pricing service to recompute a
// flight's price. The recalculation itself happens elsewhere; this side
// only emits the trigger.
type PricingEngine interface {
	Recalculate(ctx context.Context, flightID, reason string) error
}

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPricingEngine struct {
	producer publisher
	log      *logger.Logger
}

func NewKafkaPricingEngine(producer publisher, log *logger.Logger) PricingEngine {
	return &kafkaPricingEngine{
		producer: producer,
		log:      log,
	}
}

func (e *kafkaPricingEngine) Recalculate(ctx context.Context, flightID, reason string) error {
	event := model.PricingRecalcEvent{
		FlightID:   flightID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(flightID).
		WithValue(event).
		WithEventType("pricing.recalculate").
		WithSource("api").
		Build()

	if err := e.producer.Publish(ctx, msg); err != nil {
		return err
	}

	e.log.Debug("Pricing recalculation triggered",
		"flight_id", flightID,
		"reason", reason,
	)
	return nil
}
