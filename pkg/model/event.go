package model

import "time"

// Notification kinds carried on the notifications topic.
const (
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationBookingCanceled  = "booking_canceled"
	NotificationPasswordOTP      = "password_otp"
)

// NotificationEvent is published by the API process and consumed by the
// notifier worker, which renders and sends the actual email.
type NotificationEvent struct {
	Type         string    `json:"type"`
	Email        string    `json:"email"`
	TicketID     string    `json:"ticket_id,omitempty"`
	FlightID     string    `json:"flight_id,omitempty"`
	FlightDate   string    `json:"flight_date,omitempty"`
	Departure    string    `json:"departure,omitempty"`
	Arrival      string    `json:"arrival,omitempty"`
	RefundStatus string    `json:"refund_status,omitempty"`
	RefundID     string    `json:"refund_id,omitempty"`
	OTP          string    `json:"otp,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Pricing recalculation reasons.
const (
	PricingReasonBooking      = "booking"
	PricingReasonCancellation = "cancellation"
	PricingReasonManual       = "manual"
)

// PricingRecalcEvent asks the pricing engine to recompute a flight's
// price after demand changed.
type PricingRecalcEvent struct {
	FlightID   string    `json:"flight_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
