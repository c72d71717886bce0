package handlers

import (
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
	"sixfinity_gym/internal/services"
)

type PaymentHandler struct {
	db            *gorm.DB
	payments      *services.PaymentService
	bookings      *services.BookingService
	cancellations *services.CancellationService
	payhere       *services.PayHereService
	stripe        *services.StripeService
	appScheme     string
}

func NewPaymentHandler(db *gorm.DB, payments *services.PaymentService, bookings *services.BookingService, cancellations *services.CancellationService, payhere *services.PayHereService, stripe *services.StripeService) *PaymentHandler {
	appScheme := os.Getenv("APP_DEEPLINK_SCHEME")
	if appScheme == "" {
		appScheme = "sixfinity"
	}
	return &PaymentHandler{
		db:            db,
		payments:      payments,
		bookings:      bookings,
		cancellations: cancellations,
		payhere:       payhere,
		stripe:        stripe,
		appScheme:     appScheme,
	}
}

func (h *PaymentHandler) loadOwnedBooking(c echo.Context) (*models.Booking, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid booking ID")
	}

	booking, err := h.bookings.Get(c.Request().Context(), uint(id))
	if err != nil {
		return nil, httpError(err)
	}
	if booking.UserID != getUintFromContext(c, "userID") && !isAdmin(c) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Booking does not belong to this user")
	}
	return booking, nil
}

type payRequest struct {
	PaymentMethod      string `json:"payment_method"`       // card, wallet, bank
	PaymentMethodToken string `json:"payment_method_token"` // international gateway only
}

// InitiatePayment executes one charge attempt for the booking. For LKR
// bookings the response carries the hosted-checkout URL and form fields and
// the status stays pending until the notify callback; for USD bookings the
// charge settles synchronously unless an authentication challenge suspends
// it.
func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	var req payRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	var user models.User
	if err := h.db.WithContext(c.Request().Context()).First(&user, booking.UserID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
	}
	first, last := user.FirstLast()

	result, payErr := h.payments.Pay(c.Request().Context(), booking, services.PayerDetails{
		FirstName:          first,
		LastName:           last,
		Email:              user.Email,
		Phone:              user.Phone,
		Address:            user.Address,
		City:               user.City,
		Country:            user.Country,
		PaymentMethodToken: req.PaymentMethodToken,
	}, req.PaymentMethod)
	if result == nil && payErr != nil {
		return httpError(payErr)
	}

	// A failed charge comes back as a failed result, not a transport error;
	// the ledger has already recorded the attempt.
	return c.JSON(http.StatusOK, result)
}

// EstimateFee returns the displayed processing fee for an amount
func (h *PaymentHandler) EstimateFee(c echo.Context) error {
	amount, err := strconv.ParseFloat(c.QueryParam("amount"), 64)
	if err != nil || amount < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid amount")
	}
	currency := money.Currency(c.QueryParam("currency"))

	fee, err := h.payments.EstimateFee(amount, currency)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"fee":      fee,
		"total":    money.RoundCents(amount + fee),
	})
}

// PayHereNotify is the regional gateway's server-to-server callback. It is
// unauthenticated by design (the provider posts it); the signature and the
// ledger's terminal-status guard protect it.
func (h *PaymentHandler) PayHereNotify(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form payload")
	}

	event, err := h.payhere.ParseNotify(form)
	if err != nil {
		return httpError(err)
	}

	if err := h.payments.HandleRegionalNotify(c.Request().Context(), event); err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, "ok")
}

// PayHereReturn lands the user back from the hosted checkout. The ledger,
// not this redirect, is authoritative: the app must keep showing pending
// until the notify callback settles the transaction.
func (h *PaymentHandler) PayHereReturn(c echo.Context) error {
	orderID := c.QueryParam("order_id")
	return c.Redirect(http.StatusFound, h.appScheme+"://payments/return?order_id="+orderID)
}

// PayHereCancel lands the user back after abandoning the hosted checkout
func (h *PaymentHandler) PayHereCancel(c echo.Context) error {
	orderID := c.QueryParam("order_id")
	return c.Redirect(http.StatusFound, h.appScheme+"://payments/cancel?order_id="+orderID)
}

type nextActionRequest struct {
	OrderID string `json:"order_id"`
}

// StripeNextAction resolves an international payment after the client
// completed an additional-authentication challenge.
func (h *PaymentHandler) StripeNextAction(c echo.Context) error {
	var req nextActionRequest
	if err := c.Bind(&req); err != nil || req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_id is required")
	}

	var txn models.Transaction
	err := h.db.WithContext(c.Request().Context()).
		Where("order_id = ? AND gateway = ?", req.OrderID, models.PaymentGatewayStripe).
		First(&txn).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Transaction not found")
	}
	if txn.UserID != getUintFromContext(c, "userID") && !isAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Transaction does not belong to this user")
	}
	if txn.ProviderTxnID == nil {
		return echo.NewHTTPError(http.StatusConflict, "Transaction has no payment intent")
	}

	result, err := h.stripe.HandleNextAction(c.Request().Context(), *txn.ProviderTxnID)
	if err != nil {
		return httpError(err)
	}
	result.OrderID = txn.OrderID

	if err := h.payments.SettleTransaction(c.Request().Context(), txn.OrderID, result); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// VerifyPayment re-polls the gateway for a booking's latest transaction
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	var txn models.Transaction
	dberr := h.db.WithContext(c.Request().Context()).
		Where("booking_id = ?", booking.ID).Order("created_at desc").First(&txn).Error
	if dberr != nil {
		return echo.NewHTTPError(http.StatusNotFound, "No payment attempt for this booking")
	}

	if verr := h.payments.VerifyPending(c.Request().Context(), &txn); verr != nil {
		return httpError(verr)
	}

	// Re-read to report the settled state
	if err := h.db.WithContext(c.Request().Context()).First(&txn, txn.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transaction")
	}
	return c.JSON(http.StatusOK, txn)
}

// ListTransactions returns the booking's payment ledger
func (h *PaymentHandler) ListTransactions(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	var txns []models.Transaction
	if err := h.db.WithContext(c.Request().Context()).
		Where("booking_id = ?", booking.ID).Order("created_at desc").
		Find(&txns).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transactions")
	}
	return c.JSON(http.StatusOK, txns)
}

// ProcessRefund settles a pending cancellation refund. Admin only; refunds
// also retry from the worker.
func (h *PaymentHandler) ProcessRefund(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid cancellation ID")
	}

	cancellation, err := h.cancellations.ProcessRefund(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cancellation)
}
