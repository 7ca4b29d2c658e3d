package model

import (
	"time"
)

type Flight struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AirlineID      string    `json:"airline_id" bson:"airline_id" validate:"required,mongodb"`
	Source         string    `json:"source" bson:"source" validate:"required,min=2,max=50"`
	Destination    string    `json:"destination" bson:"destination" validate:"required,min=2,max=50"`
	Date           string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Departure      string    `json:"departure" bson:"departure" validate:"required,datetime=15:04"`
	Arrival        string    `json:"arrival" bson:"arrival" validate:"required,datetime=15:04"`
	AvailableSeats int       `json:"available_seats" bson:"available_seats" validate:"min=0"`
	Price          float64   `json:"price" bson:"price" validate:"required,gt=0"`
	Status         string    `json:"status" bson:"status" validate:"required,oneof=scheduled air canceled landed delayed"`
	RunwayNo       string    `json:"runway_no" bson:"runway_no" validate:"required,min=1,max=10"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type FlightUpdate struct {
	Source         string   `json:"source,omitempty" validate:"omitempty,min=2,max=50"`
	Destination    string   `json:"destination,omitempty" validate:"omitempty,min=2,max=50"`
	Date           string   `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Departure      string   `json:"departure,omitempty" validate:"omitempty,datetime=15:04"`
	Arrival        string   `json:"arrival,omitempty" validate:"omitempty,datetime=15:04"`
	AvailableSeats *int     `json:"available_seats,omitempty" validate:"omitempty,min=0"`
	Price          *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Status         string   `json:"status,omitempty" validate:"omitempty,oneof=scheduled air canceled landed delayed"`
	RunwayNo       string   `json:"runway_no,omitempty" validate:"omitempty,min=1,max=10"`
}

// FlightWithAirline is the flight-status read model. AirlineName is nil
// when the referenced airline record no longer exists.
type FlightWithAirline struct {
	Flight      `bson:",inline"`
	AirlineName *string `json:"airline_name" bson:"airline_name"`
}

const (
	FlightStatusScheduled = "scheduled"
	FlightStatusAir       = "air"
	FlightStatusCanceled  = "canceled"
	FlightStatusLanded    = "landed"
	FlightStatusDelayed   = "delayed"
)
