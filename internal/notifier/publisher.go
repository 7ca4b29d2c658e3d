package notifier

import (
	"context"

	"cloudbase/pkg/kafka"
	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
)

// Publisher emits notification events for the notifier worker to
// deliver. Delivery is asynchronous; publish failures are the caller's
// to log, not to surface.
type Publisher interface {
	Publish(ctx context.Context, event model.NotificationEvent) error
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer producer
	log      *logger.Logger
}

func NewKafkaPublisher(p producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: p,
		log:      log,
	}
}

func (n *kafkaPublisher) Publish(ctx context.Context, event model.NotificationEvent) error {
	msg := kafka.NewMessage().
		WithKey(event.Email).
		WithValue(event).
		WithEventType(event.Type).
		WithSource("api").
		Build()

	if err := n.producer.Publish(ctx, msg); err != nil {
		return err
	}

	n.log.Debug("Notification event published",
		"type", event.Type,
		"email", event.Email,
	)
	return nil
}
