package services

import (
	"context"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

// PaymentResult is the normalized outcome of one gateway call. Every
// adapter produces exactly this shape regardless of the provider's own
// status vocabulary.
type PaymentResult struct {
	Success       bool                 `json:"success"`
	Status        models.PaymentStatus `json:"status"`
	OrderID       string               `json:"order_id"`
	ProviderTxnID string               `json:"provider_txn_id,omitempty"`
	ReceiptURL    string               `json:"receipt_url,omitempty"`
	ErrorCode     string               `json:"error_code,omitempty"`
	ErrorMessage  string               `json:"error_message,omitempty"`

	// CheckoutURL and CheckoutFields are set by the regional adapter, whose
	// charge completes out of process via hosted checkout.
	CheckoutURL    string            `json:"checkout_url,omitempty"`
	CheckoutFields map[string]string `json:"checkout_fields,omitempty"`

	// ClientSecret and RequiresAction are set by the international adapter
	// when confirmation suspends on additional authentication.
	ClientSecret   string `json:"client_secret,omitempty"`
	RequiresAction bool   `json:"requires_action,omitempty"`
}

// RefundResult is the normalized outcome of one refund call
type RefundResult struct {
	Success      bool   `json:"success"`
	RefundID     string `json:"refund_id,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// PayerDetails carries the customer fields gateways require
type PayerDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	Country   string

	// PaymentMethodToken is the client-collected token the international
	// gateway confirms an intent with. Unused by the regional gateway.
	PaymentMethodToken string
}

// ChargeRequest is the generic "charge this booking" request built by the
// orchestrator before routing.
type ChargeRequest struct {
	OrderID     string
	BookingID   uint
	Amount      float64
	Currency    money.Currency
	Description string
	Metadata    map[string]string
}

// PaymentGateway is the contract every provider adapter satisfies
type PaymentGateway interface {
	// Charge initiates a payment attempt. The result may be non-terminal:
	// the regional gateway returns pending until its hosted checkout
	// calls back, and the international gateway returns pending while an
	// authentication challenge is outstanding.
	Charge(ctx context.Context, req ChargeRequest, payer PayerDetails) (*PaymentResult, error)

	// Verify re-polls the provider for the current state of an order
	Verify(ctx context.Context, providerOrderID string) (*PaymentResult, error)

	// Refund moves amount back through the provider for a completed charge
	Refund(ctx context.Context, providerTxnID string, amount float64, reason string) (*RefundResult, error)

	// EstimateFee returns the displayed processing fee for an amount
	EstimateFee(amount float64) float64

	// ID identifies the adapter in ledger rows
	ID() models.PaymentGateway
}

// GatewayRouter maps a booking's currency to the single gateway that
// settles it. The mapping is fixed at construction; an unmapped currency is
// a configuration error, not a runtime branch to guess around.
type GatewayRouter struct {
	byCurrency map[money.Currency]PaymentGateway
	byID       map[models.PaymentGateway]PaymentGateway
}

// NewGatewayRouter wires the regional and international adapters to the
// currencies they settle.
func NewGatewayRouter(regional, international PaymentGateway) *GatewayRouter {
	r := &GatewayRouter{
		byCurrency: map[money.Currency]PaymentGateway{
			money.CurrencyLKR: regional,
			money.CurrencyUSD: international,
		},
		byID: map[models.PaymentGateway]PaymentGateway{},
	}
	for _, gw := range r.byCurrency {
		r.byID[gw.ID()] = gw
	}
	return r
}

// SelectGateway returns the gateway for a currency. Deterministic and total
// over the supported currency set.
func (r *GatewayRouter) SelectGateway(currency money.Currency) (PaymentGateway, error) {
	gw, ok := r.byCurrency[currency]
	if !ok {
		return nil, ErrUnsupportedCurrency
	}
	return gw, nil
}

// GatewayByID resolves an adapter from a ledger row's recorded gateway, so
// refunds always go back through the provider that took the charge.
func (r *GatewayRouter) GatewayByID(id models.PaymentGateway) (PaymentGateway, error) {
	gw, ok := r.byID[id]
	if !ok {
		return nil, ErrUnsupportedCurrency
	}
	return gw, nil
}
