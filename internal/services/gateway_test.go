package services

import (
	"context"
	"errors"
	"testing"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

type fakeGateway struct {
	id models.PaymentGateway
}

func (g *fakeGateway) Charge(ctx context.Context, req ChargeRequest, payer PayerDetails) (*PaymentResult, error) {
	return nil, nil
}
func (g *fakeGateway) Verify(ctx context.Context, providerOrderID string) (*PaymentResult, error) {
	return nil, nil
}
func (g *fakeGateway) Refund(ctx context.Context, providerTxnID string, amount float64, reason string) (*RefundResult, error) {
	return nil, nil
}
func (g *fakeGateway) EstimateFee(amount float64) float64 { return 0 }
func (g *fakeGateway) ID() models.PaymentGateway          { return g.id }

func TestSelectGateway(t *testing.T) {
	regional := &fakeGateway{id: models.PaymentGatewayPayHere}
	international := &fakeGateway{id: models.PaymentGatewayStripe}
	router := NewGatewayRouter(regional, international)

	tests := []struct {
		name     string
		currency money.Currency
		expected models.PaymentGateway
	}{
		{"LKR routes to the regional gateway", money.CurrencyLKR, models.PaymentGatewayPayHere},
		{"USD routes to the international gateway", money.CurrencyUSD, models.PaymentGatewayStripe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := router.SelectGateway(tt.currency)
			if err != nil {
				t.Fatalf("SelectGateway(%s) returned error: %v", tt.currency, err)
			}
			if gw.ID() != tt.expected {
				t.Errorf("SelectGateway(%s).ID() = %s; want %s", tt.currency, gw.ID(), tt.expected)
			}
		})
	}
}

func TestSelectGatewayIsDeterministic(t *testing.T) {
	router := NewGatewayRouter(&fakeGateway{id: models.PaymentGatewayPayHere}, &fakeGateway{id: models.PaymentGatewayStripe})
	first, _ := router.SelectGateway(money.CurrencyLKR)
	for i := 0; i < 100; i++ {
		gw, err := router.SelectGateway(money.CurrencyLKR)
		if err != nil || gw != first {
			t.Fatal("SelectGateway must return the same adapter for the same currency every time")
		}
	}
}

func TestSelectGatewayUnsupportedCurrency(t *testing.T) {
	router := NewGatewayRouter(&fakeGateway{id: models.PaymentGatewayPayHere}, &fakeGateway{id: models.PaymentGatewayStripe})
	if _, err := router.SelectGateway(money.Currency("EUR")); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Errorf("SelectGateway(EUR) error = %v; want ErrUnsupportedCurrency", err)
	}
}

func TestGatewayByID(t *testing.T) {
	regional := &fakeGateway{id: models.PaymentGatewayPayHere}
	international := &fakeGateway{id: models.PaymentGatewayStripe}
	router := NewGatewayRouter(regional, international)

	gw, err := router.GatewayByID(models.PaymentGatewayStripe)
	if err != nil {
		t.Fatalf("GatewayByID returned error: %v", err)
	}
	if gw != PaymentGateway(international) || gw == PaymentGateway(regional) {
		t.Error("GatewayByID(stripe) did not return the international adapter")
	}

	if _, err := router.GatewayByID(models.PaymentGateway("paypal")); err == nil {
		t.Error("GatewayByID must reject an unknown gateway id")
	}
}
