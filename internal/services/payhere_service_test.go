package services

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

func TestCheckoutHash(t *testing.T) {
	tests := []struct {
		name       string
		merchantID string
		orderID    string
		amount     string
		currency   money.Currency
		secret     string
		expected   string
	}{
		{
			name:       "known digest",
			merchantID: "M1",
			orderID:    "GYM123",
			amount:     "1000.00",
			currency:   money.CurrencyLKR,
			secret:     "S",
			expected:   "115825E7D073388F616D2AFDAD65678F",
		},
		{
			name:       "another known digest",
			merchantID: "M123456",
			orderID:    "ORD-1",
			amount:     "1500.00",
			currency:   money.CurrencyLKR,
			secret:     "SECRET",
			expected:   "77AC37A67C4579A550D7D2FF13D5A344",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckoutHash(tt.merchantID, tt.orderID, tt.amount, tt.currency, tt.secret)
			if got != tt.expected {
				t.Errorf("CheckoutHash = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestCheckoutHashIsUppercase(t *testing.T) {
	got := CheckoutHash("m", "o", "1.00", money.CurrencyLKR, "s")
	if got != strings.ToUpper(got) {
		t.Errorf("CheckoutHash must be uppercase hex, got %q", got)
	}
	if len(got) != 32 {
		t.Errorf("CheckoutHash must be 32 hex chars, got %d", len(got))
	}
}

func TestNewOrderID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewOrderID()
		if !strings.HasPrefix(id, "GYM-") {
			t.Fatalf("order id %q missing prefix", id)
		}
		if seen[id] {
			t.Fatalf("order id %q generated twice", id)
		}
		seen[id] = true
	}
}

func TestMapNotifyStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected models.PaymentStatus
	}{
		{"success", 2, models.PaymentStatusCompleted},
		{"pending", 0, models.PaymentStatusPending},
		{"canceled by user", -1, models.PaymentStatusCancelled},
		{"declined", -2, models.PaymentStatusFailed},
		{"chargedback", -3, models.PaymentStatusFailed},
		{"unknown positive code fails closed", 7, models.PaymentStatusFailed},
		{"unknown negative code fails closed", -99, models.PaymentStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapNotifyStatusCode(tt.code); got != tt.expected {
				t.Errorf("MapNotifyStatusCode(%d) = %s; want %s", tt.code, got, tt.expected)
			}
		})
	}
}

func TestParseNotify(t *testing.T) {
	svc := &PayHereService{MerchantID: "M1", merchantSecret: "S"}

	t.Run("successful payment", func(t *testing.T) {
		form := url.Values{}
		form.Set("order_id", "GYM-1-AAAA")
		form.Set("payment_id", "320012345")
		form.Set("status_code", "2")
		form.Set("payhere_amount", "250.00")
		form.Set("payhere_currency", "LKR")

		event, err := svc.ParseNotify(form)
		if err != nil {
			t.Fatalf("ParseNotify returned error: %v", err)
		}
		if event.Status != models.PaymentStatusCompleted {
			t.Errorf("Status = %s; want %s", event.Status, models.PaymentStatusCompleted)
		}
		if event.PaymentID != "320012345" {
			t.Errorf("PaymentID = %q; want %q", event.PaymentID, "320012345")
		}
		if event.StatusCode != 2 {
			t.Errorf("StatusCode = %d; want 2", event.StatusCode)
		}
	})

	t.Run("valid signature accepted", func(t *testing.T) {
		form := url.Values{}
		form.Set("order_id", "O1")
		form.Set("status_code", "2")
		form.Set("payhere_amount", "250.00")
		form.Set("payhere_currency", "LKR")
		form.Set("md5sig", "DDBF730308CA8006532860ABCD50B04A")

		if _, err := svc.ParseNotify(form); err != nil {
			t.Errorf("ParseNotify rejected a valid signature: %v", err)
		}
	})

	t.Run("tampered signature rejected", func(t *testing.T) {
		form := url.Values{}
		form.Set("order_id", "O1")
		form.Set("status_code", "2")
		form.Set("payhere_amount", "999.00")
		form.Set("payhere_currency", "LKR")
		form.Set("md5sig", "DDBF730308CA8006532860ABCD50B04A")

		if _, err := svc.ParseNotify(form); err == nil {
			t.Error("ParseNotify accepted a signature for a different amount")
		}
	})

	t.Run("unknown code fails closed", func(t *testing.T) {
		form := url.Values{}
		form.Set("order_id", "O1")
		form.Set("status_code", "5")

		event, err := svc.ParseNotify(form)
		if err != nil {
			t.Fatalf("ParseNotify returned error: %v", err)
		}
		if event.Status != models.PaymentStatusFailed {
			t.Errorf("Status = %s; want %s", event.Status, models.PaymentStatusFailed)
		}
		if event.RawStatus != "5" {
			t.Errorf("RawStatus = %q; want %q", event.RawStatus, "5")
		}
	})

	t.Run("missing order id rejected", func(t *testing.T) {
		form := url.Values{}
		form.Set("status_code", "2")
		if _, err := svc.ParseNotify(form); err == nil {
			t.Error("ParseNotify accepted a callback without order_id")
		}
	})

	t.Run("non-numeric status rejected", func(t *testing.T) {
		form := url.Values{}
		form.Set("order_id", "O1")
		form.Set("status_code", "ok")
		if _, err := svc.ParseNotify(form); err == nil {
			t.Error("ParseNotify accepted a non-numeric status code")
		}
	})
}

func TestPayHereChargeReturnsHostedCheckout(t *testing.T) {
	svc := &PayHereService{
		MerchantID:     "M1",
		merchantSecret: "S",
		baseURL:        "https://sandbox.payhere.lk",
		returnURL:      "http://localhost:8080/payments/payhere/return",
		cancelURL:      "http://localhost:8080/payments/payhere/cancel",
		notifyURL:      "http://localhost:8080/payments/payhere/notify",
	}

	result, err := svc.Charge(context.Background(), ChargeRequest{
		OrderID:     "GYM123",
		BookingID:   42,
		Amount:      1000,
		Currency:    money.CurrencyLKR,
		Description: "gym_access on 2026-03-10 18:00",
		Metadata:    map[string]string{"user_id": "7"},
	}, PayerDetails{FirstName: "Nimal", LastName: "Perera", Email: "nimal@example.com"})
	if err != nil {
		t.Fatalf("Charge returned error: %v", err)
	}

	if result.Status != models.PaymentStatusPending {
		t.Errorf("Status = %s; hosted checkout must start pending", result.Status)
	}
	if result.CheckoutURL == "" {
		t.Error("CheckoutURL is empty")
	}

	fields := result.CheckoutFields
	if fields["amount"] != "1000.00" {
		t.Errorf("amount field = %q; want %q", fields["amount"], "1000.00")
	}
	if fields["hash"] != "115825E7D073388F616D2AFDAD65678F" {
		t.Errorf("hash field = %q; want %q", fields["hash"], "115825E7D073388F616D2AFDAD65678F")
	}
	if fields["custom_1"] != "42" {
		t.Errorf("custom_1 = %q; want booking id %q", fields["custom_1"], "42")
	}
	if fields["custom_2"] != "7" {
		t.Errorf("custom_2 = %q; want user id %q", fields["custom_2"], "7")
	}
}
