package notifier

import (
	"context"
	"fmt"

	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
)

// Sender delivers a rendered notification to the recipient. The log
// sender stands in until a real mail provider is configured.
type Sender interface {
	Send(ctx context.Context, email, subject, body string) error
}

type logSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(ctx context.Context, email, subject, body string) error {
	s.log.Info("Sending email",
		"to", email,
		"subject", subject,
		"body", body,
	)
	return nil
}

// renderEmail turns a notification event into subject and body text.
func renderEmail(event model.NotificationEvent) (string, string, error) {
	switch event.Type {
	case model.NotificationBookingConfirmed:
		subject := "Your flight booking is confirmed"
		body := fmt.Sprintf(
			"Your ticket %s for flight %s on %s (%s - %s) is confirmed.",
			event.TicketID, event.FlightID, event.FlightDate, event.Departure, event.Arrival,
		)
		return subject, body, nil

	case model.NotificationBookingCanceled:
		subject := "Your flight booking was canceled"
		body := fmt.Sprintf("Your ticket %s for flight %s has been canceled.", event.TicketID, event.FlightID)
		switch event.RefundStatus {
		case model.RefundStatusNoPayment:
			body += " No payment was recorded, so no refund is due."
		case model.RefundStatusFailed:
			body += " The automatic refund failed; our support team will process it manually."
		default:
			body += fmt.Sprintf(" Refund %s is on its way (status: %s).", event.RefundID, event.RefundStatus)
		}
		return subject, body, nil

	case model.NotificationPasswordOTP:
		subject := "Your password reset code"
		body := fmt.Sprintf("Use code %s to reset your password. It expires shortly.", event.OTP)
		return subject, body, nil

	default:
		return "", "", fmt.Errorf("unknown notification type: %s", event.Type)
	}
}
