package notifier

import (
	"context"
	"fmt"

	"cloudbase/pkg/kafka"
	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
)

// Worker consumes notification events and hands them to the sender.
// Rendering failures are permanent and reported back so the consumer
// can route the message to the DLQ.
type Worker struct {
	sender Sender
	log    *logger.Logger
}

func NewWorker(sender Sender, log *logger.Logger) *Worker {
	return &Worker{
		sender: sender,
		log:    log,
	}
}

// Handle implements the consumer's message handler.
func (w *Worker) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.NotificationEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("failed to decode notification event: %w", err)
	}

	subject, body, err := renderEmail(event)
	if err != nil {
		return err
	}

	if err := w.sender.Send(ctx, event.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}

	w.log.Debug("Notification delivered",
		"type", event.Type,
		"email", event.Email,
		"event_id", msg.GetEventID(),
	)
	return nil
}
