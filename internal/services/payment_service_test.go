package services

import (
	"testing"

	"sixfinity_gym/internal/models"
)

func TestCanApplyProviderUpdate(t *testing.T) {
	tests := []struct {
		name     string
		recorded models.PaymentStatus
		expected bool
	}{
		{"pending accepts updates", models.PaymentStatusPending, true},
		{"processing accepts updates", models.PaymentStatusProcessing, true},
		{"partially refunded accepts updates", models.PaymentStatusPartiallyRefunded, true},
		{"completed is immutable", models.PaymentStatusCompleted, false},
		{"failed is immutable", models.PaymentStatusFailed, false},
		{"cancelled is immutable", models.PaymentStatusCancelled, false},
		{"refunded is immutable", models.PaymentStatusRefunded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanApplyProviderUpdate(tt.recorded); got != tt.expected {
				t.Errorf("CanApplyProviderUpdate(%s) = %v; want %v", tt.recorded, got, tt.expected)
			}
		})
	}
}
