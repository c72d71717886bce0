package services

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

const payHereProvider = "payhere"

// payHereStatusCodes maps the provider's notify status codes into the
// unified vocabulary. Anything absent fails closed to failed.
var payHereStatusCodes = map[int]models.PaymentStatus{
	2:  models.PaymentStatusCompleted,
	0:  models.PaymentStatusPending,
	-1: models.PaymentStatusCancelled,
}

// payHereSearchStatuses maps the provider's retrieval API status strings.
var payHereSearchStatuses = map[string]models.PaymentStatus{
	"RECEIVED":   models.PaymentStatusCompleted,
	"PENDING":    models.PaymentStatusPending,
	"CANCELED":   models.PaymentStatusCancelled,
	"FAILED":     models.PaymentStatusFailed,
	"REFUNDED":   models.PaymentStatusRefunded,
	"CHARGEBACK": models.PaymentStatusRefunded,
}

// PayHereService is the regional local-currency gateway adapter. Payment
// completes out of process: Charge hands the user to the provider's hosted
// checkout and the terminal result arrives later on the notify callback.
type PayHereService struct {
	MerchantID     string
	merchantSecret string
	appID          string
	appSecret      string
	baseURL        string
	returnURL      string
	cancelURL      string
	notifyURL      string
	httpClient     *http.Client
}

// NewPayHereService reads the merchant credentials from the environment.
// The merchant secret never leaves this service; clients only ever see the
// finished digest.
func NewPayHereService() *PayHereService {
	baseURL := os.Getenv("PAYHERE_BASE_URL")
	if baseURL == "" {
		baseURL = "https://sandbox.payhere.lk"
	}
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}

	return &PayHereService{
		MerchantID:     os.Getenv("PAYHERE_MERCHANT_ID"),
		merchantSecret: os.Getenv("PAYHERE_MERCHANT_SECRET"),
		appID:          os.Getenv("PAYHERE_APP_ID"),
		appSecret:      os.Getenv("PAYHERE_APP_SECRET"),
		baseURL:        baseURL,
		returnURL:      appURL + "/payments/payhere/return",
		cancelURL:      appURL + "/payments/payhere/cancel",
		notifyURL:      appURL + "/payments/payhere/notify",
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

// ID implements PaymentGateway
func (s *PayHereService) ID() models.PaymentGateway { return models.PaymentGatewayPayHere }

// NewOrderID builds a provider order id unique per attempt. Order ids are
// never reused, even on retry, so a timeout retry can never be read by the
// provider as the same order succeeding twice.
func NewOrderID() string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("GYM-%d-%s", time.Now().UnixMilli(), strings.ToUpper(hex.EncodeToString(suffix)))
}

// CheckoutHash computes the provider-mandated request digest:
// UPPERCASE(MD5(merchant_id + order_id + amount + currency + merchant_secret))
// with amount formatted to exactly two decimals before concatenation. The
// provider silently rejects an incorrect digest, so this must stay
// byte-exact.
func CheckoutHash(merchantID, orderID, amount string, currency money.Currency, secret string) string {
	sum := md5.Sum([]byte(merchantID + orderID + amount + string(currency) + secret))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Charge implements PaymentGateway. The immediate result is always pending:
// the user completes payment on the provider's hosted checkout page and the
// outcome arrives on the notify callback.
func (s *PayHereService) Charge(ctx context.Context, req ChargeRequest, payer PayerDetails) (*PaymentResult, error) {
	amount := money.FormatPlain(req.Amount)

	fields := map[string]string{
		"merchant_id": s.MerchantID,
		"return_url":  s.returnURL,
		"cancel_url":  s.cancelURL,
		"notify_url":  s.notifyURL,
		"order_id":    req.OrderID,
		"items":       req.Description,
		"currency":    string(req.Currency),
		"amount":      amount,
		"first_name":  payer.FirstName,
		"last_name":   payer.LastName,
		"email":       payer.Email,
		"phone":       payer.Phone,
		"address":     payer.Address,
		"city":        payer.City,
		"country":     payer.Country,
		"hash":        CheckoutHash(s.MerchantID, req.OrderID, amount, req.Currency, s.merchantSecret),
		"custom_1":    strconv.FormatUint(uint64(req.BookingID), 10),
		"custom_2":    req.Metadata["user_id"],
	}

	return &PaymentResult{
		Success:        true,
		Status:         models.PaymentStatusPending,
		OrderID:        req.OrderID,
		CheckoutURL:    s.baseURL + "/pay/checkout",
		CheckoutFields: fields,
	}, nil
}

// NotifyEvent is the parsed notify callback the provider posts after the
// hosted checkout resolves.
type NotifyEvent struct {
	OrderID    string
	PaymentID  string
	StatusCode int
	Amount     string
	Currency   string
	Status     models.PaymentStatus
	RawStatus  string
}

// ParseNotify decodes and verifies a notify callback. The md5sig field,
// when present, must match the same plain-secret digest convention as the
// checkout hash, extended with the status code.
func (s *PayHereService) ParseNotify(form url.Values) (*NotifyEvent, error) {
	orderID := form.Get("order_id")
	if orderID == "" {
		return nil, &ValidationError{Field: "order_id", Message: "missing in notify callback"}
	}

	rawCode := form.Get("status_code")
	if rawCode == "" {
		rawCode = form.Get("status")
	}
	code, err := strconv.Atoi(rawCode)
	if err != nil {
		return nil, &ValidationError{Field: "status_code", Message: "not numeric: " + rawCode}
	}

	if sig := form.Get("md5sig"); sig != "" {
		expect := md5.Sum([]byte(s.MerchantID + orderID + form.Get("payhere_amount") +
			form.Get("payhere_currency") + rawCode + s.merchantSecret))
		if !strings.EqualFold(hex.EncodeToString(expect[:]), sig) {
			return nil, &GatewayError{Provider: payHereProvider, Code: "bad_signature", Message: "notify signature mismatch"}
		}
	}

	status, ok := payHereStatusCodes[code]
	if !ok {
		status = models.PaymentStatusFailed
	}

	return &NotifyEvent{
		OrderID:    orderID,
		PaymentID:  form.Get("payment_id"),
		StatusCode: code,
		Amount:     form.Get("payhere_amount"),
		Currency:   form.Get("payhere_currency"),
		Status:     status,
		RawStatus:  rawCode,
	}, nil
}

// MapNotifyStatusCode exposes the notify code mapping for reconciliation
// checks: 2 completed, 0 pending, -1 cancelled, everything else failed.
func MapNotifyStatusCode(code int) models.PaymentStatus {
	if status, ok := payHereStatusCodes[code]; ok {
		return status
	}
	return models.PaymentStatusFailed
}

type payHereTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type payHereSearchResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Data   []struct {
		PaymentID int64  `json:"payment_id"`
		OrderID   string `json:"order_id"`
		Status    string `json:"status"`
	} `json:"data"`
}

type payHereRefundResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Data   struct {
		RefundID int64 `json:"refund_id"`
	} `json:"data"`
}

// accessToken obtains a merchant API token via client credentials
func (s *PayHereService) accessToken(ctx context.Context) (string, error) {
	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/merchant/v1/oauth/token", body)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.appID, s.appSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &GatewayError{Provider: payHereProvider, Message: "token request failed", Err: err}
	}
	defer resp.Body.Close()

	var token payHereTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", &GatewayError{Provider: payHereProvider, Message: "invalid token response", Err: err}
	}
	if token.AccessToken == "" {
		return "", &GatewayError{Provider: payHereProvider, Code: strconv.Itoa(resp.StatusCode), Message: "empty access token"}
	}
	return token.AccessToken, nil
}

// Verify implements PaymentGateway by querying the provider's payment
// retrieval API for the order.
func (s *PayHereService) Verify(ctx context.Context, providerOrderID string) (*PaymentResult, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := s.baseURL + "/merchant/v1/payment/search?order_id=" + url.QueryEscape(providerOrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Provider: payHereProvider, Message: "payment search failed", Err: err}
	}
	defer resp.Body.Close()

	var search payHereSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, &GatewayError{Provider: payHereProvider, Message: "invalid search response", Err: err}
	}
	if search.Status != 1 || len(search.Data) == 0 {
		// The provider has no record: the checkout was never completed
		return &PaymentResult{
			Success: false,
			Status:  models.PaymentStatusPending,
			OrderID: providerOrderID,
		}, nil
	}

	latest := search.Data[0]
	status, ok := payHereSearchStatuses[strings.ToUpper(latest.Status)]
	if !ok {
		recErr := &ReconciliationError{Provider: payHereProvider, RawStatus: latest.Status}
		return &PaymentResult{
			Success:      false,
			Status:       models.PaymentStatusFailed,
			OrderID:      providerOrderID,
			ErrorCode:    "unmapped_status",
			ErrorMessage: recErr.Error(),
		}, nil
	}

	return &PaymentResult{
		Success:       status == models.PaymentStatusCompleted,
		Status:        status,
		OrderID:       providerOrderID,
		ProviderTxnID: strconv.FormatInt(latest.PaymentID, 10),
	}, nil
}

// Refund implements PaymentGateway via the provider's refund API
func (s *PayHereService) Refund(ctx context.Context, providerTxnID string, amount float64, reason string) (*RefundResult, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return &RefundResult{Success: false, ErrorMessage: err.Error()}, err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"payment_id":  providerTxnID,
		"amount":      money.FormatPlain(amount),
		"description": reason,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/merchant/v1/payment/refund", strings.NewReader(string(payload)))
	if err != nil {
		return &RefundResult{Success: false, ErrorMessage: err.Error()}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		gwErr := &GatewayError{Provider: payHereProvider, Message: "refund request failed", Err: err}
		return &RefundResult{Success: false, ErrorMessage: gwErr.Error()}, gwErr
	}
	defer resp.Body.Close()

	var refund payHereRefundResponse
	if err := json.NewDecoder(resp.Body).Decode(&refund); err != nil {
		gwErr := &GatewayError{Provider: payHereProvider, Message: "invalid refund response", Err: err}
		return &RefundResult{Success: false, ErrorMessage: gwErr.Error()}, gwErr
	}
	if refund.Status != 1 {
		gwErr := &GatewayError{Provider: payHereProvider, Code: strconv.Itoa(refund.Status), Message: refund.Msg}
		return &RefundResult{Success: false, ErrorCode: gwErr.Code, ErrorMessage: refund.Msg}, gwErr
	}

	return &RefundResult{
		Success:  true,
		RefundID: strconv.FormatInt(refund.Data.RefundID, 10),
	}, nil
}

// EstimateFee implements PaymentGateway
func (s *PayHereService) EstimateFee(amount float64) float64 {
	return money.EstimateGatewayFee(amount, money.CurrencyLKR, false)
}
