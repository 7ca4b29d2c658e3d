package model

import (
	"time"
)

type Ticket struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FlightID       string    `json:"flight_id" bson:"flight_id" validate:"required,mongodb"`
	UserEmail      string    `json:"user_email" bson:"user_email" validate:"required,email"`
	PassengerNo    int       `json:"passenger_no" bson:"passenger_no" validate:"required,min=1,max=10"`
	Class          string    `json:"class" bson:"class" validate:"required,oneof=economy business first"`
	FoodPreference string    `json:"food_preference,omitempty" bson:"food_preference,omitempty" validate:"omitempty,oneof=Veg Non-Veg Vegan None"`
	ContactPhone   string    `json:"contact_phone,omitempty" bson:"contact_phone,omitempty" validate:"omitempty,e164"`
	Source         string    `json:"source" bson:"source" validate:"required,min=2,max=50"`
	Destination    string    `json:"destination" bson:"destination" validate:"required,min=2,max=50"`
	SeatNo         string    `json:"seat_no" bson:"seat_no" validate:"required,min=1,max=5"`
	TransactionID  string    `json:"transaction_id,omitempty" bson:"transaction_id,omitempty" validate:"omitempty"`
	PaymentStatus  string    `json:"payment_status" bson:"payment_status" validate:"required,oneof=Pending Paid"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
)

const (
	TravelClassEconomy  = "economy"
	TravelClassBusiness = "business"
	TravelClassFirst    = "first"
)

// RefundResult reports the refund outcome of a cancellation. Status
// "no_payment" and "failed" are local sentinels, not provider states.
type RefundResult struct {
	Status string  `json:"status"`
	ID     string  `json:"id,omitempty"`
	Amount float64 `json:"amount,omitempty"`
}

const (
	RefundStatusNoPayment = "no_payment"
	RefundStatusFailed    = "failed"
)
