package services

import (
	"errors"
	"testing"

	"sixfinity_gym/internal/models"
)

func TestCheckCancelable(t *testing.T) {
	tests := []struct {
		status  models.BookingStatus
		wantErr error
	}{
		{models.BookingStatusPending, nil},
		{models.BookingStatusConfirmed, nil},
		{models.BookingStatusRescheduled, nil},
		{models.BookingStatusCanceled, ErrAlreadyCanceled},
		{models.BookingStatusCheckedIn, ErrNotCancelable},
		{models.BookingStatusCompleted, ErrNotCancelable},
		{models.BookingStatusNoShow, ErrNotCancelable},
	}

	svc := &CancellationService{}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := svc.checkCancelable(&models.Booking{Status: tt.status})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("checkCancelable(%s) = %v, want %v", tt.status, err, tt.wantErr)
			}
		})
	}
}

func TestRefundStatusFor(t *testing.T) {
	tests := []struct {
		amount float64
		want   models.RefundStatus
	}{
		{2500.00, models.RefundStatusPending},
		{0.01, models.RefundStatusPending},
		{0, models.RefundStatusNotApplicable},
	}

	for _, tt := range tests {
		if got := refundStatusFor(tt.amount); got != tt.want {
			t.Errorf("refundStatusFor(%v) = %s, want %s", tt.amount, got, tt.want)
		}
	}
}
