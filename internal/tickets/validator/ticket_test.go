package validator

import (
	"testing"

	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
)

func validTicket() *model.Ticket {
	return &model.Ticket{
		FlightID:      "665f1f77bcf86cd799439011",
		UserEmail:     "traveler@example.com",
		PassengerNo:   2,
		Class:         model.TravelClassEconomy,
		Source:        "delhi",
		Destination:   "mumbai",
		SeatNo:        "14A",
		PaymentStatus: model.PaymentStatusPending,
	}
}

func TestValidate(t *testing.T) {
	v := NewTicketValidator(logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT}))

	tests := []struct {
		name    string
		mutate  func(*model.Ticket)
		wantErr bool
	}{
		{
			name:    "valid ticket",
			mutate:  func(tk *model.Ticket) {},
			wantErr: false,
		},
		{
			name:    "missing flight id",
			mutate:  func(tk *model.Ticket) { tk.FlightID = "" },
			wantErr: true,
		},
		{
			name:    "malformed flight id",
			mutate:  func(tk *model.Ticket) { tk.FlightID = "not-an-object-id" },
			wantErr: true,
		},
		{
			name:    "invalid email",
			mutate:  func(tk *model.Ticket) { tk.UserEmail = "not-an-email" },
			wantErr: true,
		},
		{
			name:    "zero passengers",
			mutate:  func(tk *model.Ticket) { tk.PassengerNo = 0 },
			wantErr: true,
		},
		{
			name:    "too many passengers",
			mutate:  func(tk *model.Ticket) { tk.PassengerNo = 11 },
			wantErr: true,
		},
		{
			name:    "unknown class",
			mutate:  func(tk *model.Ticket) { tk.Class = "premium" },
			wantErr: true,
		},
		{
			name:    "unknown food preference",
			mutate:  func(tk *model.Ticket) { tk.FoodPreference = "Paleo" },
			wantErr: true,
		},
		{
			name:    "valid food preference",
			mutate:  func(tk *model.Ticket) { tk.FoodPreference = "Veg" },
			wantErr: false,
		},
		{
			name:    "same source and destination",
			mutate:  func(tk *model.Ticket) { tk.Destination = "delhi" },
			wantErr: true,
		},
		{
			name:    "invalid contact phone",
			mutate:  func(tk *model.Ticket) { tk.ContactPhone = "12345" },
			wantErr: true,
		},
		{
			name:    "valid contact phone",
			mutate:  func(tk *model.Ticket) { tk.ContactPhone = "+919812345678" },
			wantErr: false,
		},
		{
			name:    "unknown payment status",
			mutate:  func(tk *model.Ticket) { tk.PaymentStatus = "Refunded" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := validTicket()
			tt.mutate(tk)

			err := v.Validate(tk)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
