package services

import (
	"strings"
	"testing"

	"github.com/stripe/stripe-go/v82"

	"sixfinity_gym/internal/models"
)

func TestResultFromIntent(t *testing.T) {
	tests := []struct {
		name           string
		intentStatus   stripe.PaymentIntentStatus
		expected       models.PaymentStatus
		success        bool
		requiresAction bool
	}{
		{"succeeded", stripe.PaymentIntentStatusSucceeded, models.PaymentStatusCompleted, true, false},
		{"processing", stripe.PaymentIntentStatusProcessing, models.PaymentStatusProcessing, false, false},
		{"requires capture", stripe.PaymentIntentStatusRequiresCapture, models.PaymentStatusProcessing, false, false},
		{"requires payment method", stripe.PaymentIntentStatusRequiresPaymentMethod, models.PaymentStatusPending, false, false},
		{"requires confirmation", stripe.PaymentIntentStatusRequiresConfirmation, models.PaymentStatusPending, false, false},
		{"requires action suspends", stripe.PaymentIntentStatusRequiresAction, models.PaymentStatusPending, false, true},
		{"canceled", stripe.PaymentIntentStatusCanceled, models.PaymentStatusCancelled, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := &stripe.PaymentIntent{
				ID:           "pi_123",
				Status:       tt.intentStatus,
				ClientSecret: "pi_123_secret",
			}
			result := resultFromIntent(pi)

			if result.Status != tt.expected {
				t.Errorf("Status = %s; want %s", result.Status, tt.expected)
			}
			if result.Success != tt.success {
				t.Errorf("Success = %v; want %v", result.Success, tt.success)
			}
			if result.RequiresAction != tt.requiresAction {
				t.Errorf("RequiresAction = %v; want %v", result.RequiresAction, tt.requiresAction)
			}
			if result.ProviderTxnID != "pi_123" {
				t.Errorf("ProviderTxnID = %q; want %q", result.ProviderTxnID, "pi_123")
			}
		})
	}
}

func TestResultFromIntentFailsClosed(t *testing.T) {
	pi := &stripe.PaymentIntent{
		ID:     "pi_unknown",
		Status: stripe.PaymentIntentStatus("some_future_status"),
	}
	result := resultFromIntent(pi)

	if result.Status != models.PaymentStatusFailed {
		t.Errorf("Status = %s; unmapped provider statuses must fail closed", result.Status)
	}
	if result.Success {
		t.Error("Success must be false for an unmapped status")
	}
	if result.ErrorCode != "unmapped_status" {
		t.Errorf("ErrorCode = %q; want %q", result.ErrorCode, "unmapped_status")
	}
	if !strings.Contains(result.ErrorMessage, "some_future_status") {
		t.Errorf("ErrorMessage %q must carry the raw provider status", result.ErrorMessage)
	}
}

func TestResultFromIntentCarriesReceipt(t *testing.T) {
	pi := &stripe.PaymentIntent{
		ID:     "pi_123",
		Status: stripe.PaymentIntentStatusSucceeded,
		LatestCharge: &stripe.Charge{
			ReceiptURL: "https://pay.stripe.com/receipts/abc",
		},
	}
	result := resultFromIntent(pi)
	if result.ReceiptURL != "https://pay.stripe.com/receipts/abc" {
		t.Errorf("ReceiptURL = %q; want the latest charge's receipt", result.ReceiptURL)
	}
}
