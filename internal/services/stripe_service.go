package services

import (
	"context"
	"errors"
	"os"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	striperefund "github.com/stripe/stripe-go/v82/refund"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

const stripeProvider = "stripe"

// stripeIntentStatuses maps every documented payment-intent status into the
// unified vocabulary. A status missing from this table fails closed to
// failed with the raw value preserved; it is never defaulted to completed.
var stripeIntentStatuses = map[stripe.PaymentIntentStatus]models.PaymentStatus{
	stripe.PaymentIntentStatusRequiresPaymentMethod: models.PaymentStatusPending,
	stripe.PaymentIntentStatusRequiresConfirmation:  models.PaymentStatusPending,
	stripe.PaymentIntentStatusRequiresAction:        models.PaymentStatusPending,
	stripe.PaymentIntentStatusProcessing:            models.PaymentStatusProcessing,
	stripe.PaymentIntentStatusRequiresCapture:       models.PaymentStatusProcessing,
	stripe.PaymentIntentStatusCanceled:              models.PaymentStatusCancelled,
	stripe.PaymentIntentStatusSucceeded:             models.PaymentStatusCompleted,
}

// StripeService is the international card gateway adapter. Intents are
// created server-side with the secret key so a client can never mint its
// own charge amount; the client only ever holds the intent's client secret.
type StripeService struct{}

// NewStripeService configures the provider SDK from the environment
func NewStripeService() *StripeService {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &StripeService{}
}

// ID implements PaymentGateway
func (s *StripeService) ID() models.PaymentGateway { return models.PaymentGatewayStripe }

// resultFromIntent normalizes a payment intent into a PaymentResult
func resultFromIntent(pi *stripe.PaymentIntent) *PaymentResult {
	status, ok := stripeIntentStatuses[pi.Status]
	if !ok {
		recErr := &ReconciliationError{Provider: stripeProvider, RawStatus: string(pi.Status)}
		return &PaymentResult{
			Success:       false,
			Status:        models.PaymentStatusFailed,
			ProviderTxnID: pi.ID,
			ErrorCode:     "unmapped_status",
			ErrorMessage:  recErr.Error(),
		}
	}

	result := &PaymentResult{
		Success:        status == models.PaymentStatusCompleted,
		Status:         status,
		ProviderTxnID:  pi.ID,
		ClientSecret:   pi.ClientSecret,
		RequiresAction: pi.Status == stripe.PaymentIntentStatusRequiresAction,
	}
	if pi.LatestCharge != nil && pi.LatestCharge.ReceiptURL != "" {
		result.ReceiptURL = pi.LatestCharge.ReceiptURL
	}
	return result
}

// gatewayErr wraps a provider SDK failure, keeping the decline code
func gatewayErr(err error, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &GatewayError{Provider: stripeProvider, Code: string(stripeErr.Code), Message: stripeErr.Msg, Err: err}
	}
	return &GatewayError{Provider: stripeProvider, Message: op + " failed", Err: err}
}

// Charge implements PaymentGateway: creates an intent for the exact amount
// in minor units and, when a payment-method token was collected, confirms
// it in the same call. Confirmation may suspend on an authentication
// challenge, in which case the result is pending with RequiresAction set
// and the client secret for the follow-up.
func (s *StripeService) Charge(ctx context.Context, req ChargeRequest, payer PayerDetails) (*PaymentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(money.MinorUnits(req.Amount)),
		Currency:     stripe.String(string(stripe.CurrencyUSD)),
		Description:  stripe.String(req.Description),
		ReceiptEmail: stripe.String(payer.Email),
	}
	params.Context = ctx
	params.AddExpand("latest_charge")
	params.AddMetadata("order_id", req.OrderID)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if payer.PaymentMethodToken != "" {
		params.PaymentMethod = stripe.String(payer.PaymentMethodToken)
		params.Confirm = stripe.Bool(true)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, gatewayErr(err, "create intent")
	}
	result := resultFromIntent(pi)
	result.OrderID = req.OrderID
	return result, nil
}

// HandleNextAction resolves an intent after the client completed an
// additional-authentication challenge. If the intent now only awaits
// confirmation it is confirmed; otherwise its current state is returned.
func (s *StripeService) HandleNextAction(ctx context.Context, intentID string) (*PaymentResult, error) {
	getParams := &stripe.PaymentIntentParams{}
	getParams.Context = ctx
	getParams.AddExpand("latest_charge")

	pi, err := paymentintent.Get(intentID, getParams)
	if err != nil {
		return nil, gatewayErr(err, "retrieve intent")
	}

	if pi.Status == stripe.PaymentIntentStatusRequiresConfirmation {
		confirmParams := &stripe.PaymentIntentConfirmParams{}
		confirmParams.Context = ctx
		confirmParams.AddExpand("latest_charge")
		pi, err = paymentintent.Confirm(intentID, confirmParams)
		if err != nil {
			return nil, gatewayErr(err, "confirm intent")
		}
	}

	return resultFromIntent(pi), nil
}

// Verify implements PaymentGateway by retrieving the intent's current state
func (s *StripeService) Verify(ctx context.Context, providerOrderID string) (*PaymentResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := paymentintent.Get(providerOrderID, params)
	if err != nil {
		return nil, gatewayErr(err, "retrieve intent")
	}
	return resultFromIntent(pi), nil
}

// Refund implements PaymentGateway. A zero amount requests a full refund.
func (s *StripeService) Refund(ctx context.Context, providerTxnID string, amount float64, reason string) (*RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(providerTxnID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	if amount > 0 {
		params.Amount = stripe.Int64(money.MinorUnits(amount))
	}
	if reason != "" {
		params.AddMetadata("reason", reason)
	}

	r, err := striperefund.New(params)
	if err != nil {
		gwErr := gatewayErr(err, "refund")
		var detail *GatewayError
		errors.As(gwErr, &detail)
		return &RefundResult{Success: false, ErrorCode: detail.Code, ErrorMessage: detail.Message}, gwErr
	}

	return &RefundResult{Success: true, RefundID: r.ID}, nil
}

// EstimateFee implements PaymentGateway. International cards carry the
// higher display rate.
func (s *StripeService) EstimateFee(amount float64) float64 {
	return money.EstimateGatewayFee(amount, money.CurrencyUSD, true)
}
