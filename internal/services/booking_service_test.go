package services

import (
	"testing"
	"time"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

func TestActualDurationMinutes(t *testing.T) {
	base := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		in, out  time.Time
		expected int
	}{
		{"exactly one hour", base, base.Add(time.Hour), 60},
		{"partial minute truncates", base, base.Add(59*time.Minute + 45*time.Second), 59},
		{"immediate checkout", base, base, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActualDurationMinutes(tt.in, tt.out); got != tt.expected {
				t.Errorf("ActualDurationMinutes = %d; want %d", got, tt.expected)
			}
		})
	}
}

func TestCreateBookingInputValidate(t *testing.T) {
	valid := CreateBookingInput{
		UserID:          1,
		BookingType:     models.BookingTypeGymAccess,
		ScheduledDate:   "2026-03-10",
		ScheduledTime:   "18:00",
		DurationMinutes: 60,
		Price:           2500,
		Currency:        money.CurrencyLKR,
	}

	if err := valid.validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(in *CreateBookingInput)
	}{
		{"unknown booking type", func(in *CreateBookingInput) { in.BookingType = "swimming" }},
		{"malformed date", func(in *CreateBookingInput) { in.ScheduledDate = "10/03/2026" }},
		{"malformed time", func(in *CreateBookingInput) { in.ScheduledTime = "6pm" }},
		{"zero duration", func(in *CreateBookingInput) { in.DurationMinutes = 0 }},
		{"negative price", func(in *CreateBookingInput) { in.Price = -1 }},
		{"unsupported currency", func(in *CreateBookingInput) { in.Currency = "EUR" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if _, ok := err.(*ValidationError); !ok {
				t.Errorf("error type = %T; want *ValidationError", err)
			}
		})
	}
}
