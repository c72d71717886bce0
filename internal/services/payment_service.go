package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

// PaymentService drives a single payment attempt end to end: it builds the
// charge request, routes it to the right gateway, persists the ledger row
// and hands the normalized result back untouched. It never retries a charge
// on its own: resubmission risks double-charging when the failure was only
// a response-delivery failure.
type PaymentService struct {
	db       *gorm.DB
	router   *GatewayRouter
	cache    *RedisCache
	bookings *BookingService
	notifier *NotificationService
}

func NewPaymentService(db *gorm.DB, router *GatewayRouter, cache *RedisCache, bookings *BookingService, notifier *NotificationService) *PaymentService {
	return &PaymentService{db: db, router: router, cache: cache, bookings: bookings, notifier: notifier}
}

// ErrAlreadyPaid rejects a charge attempt for a settled booking
var ErrAlreadyPaid = errors.New("booking is already paid")

// CanApplyProviderUpdate is the ledger immutability guard: once a
// transaction's recorded status is terminal, a later duplicate provider
// response must not mutate it.
func CanApplyProviderUpdate(recorded models.PaymentStatus) bool {
	return !recorded.IsTerminal()
}

// activeTransaction returns the booking's non-terminal transaction, if any
func (s *PaymentService) activeTransaction(ctx context.Context, bookingID uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).
		Where("booking_id = ? AND status IN ?", bookingID,
			[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing}).
		Order("created_at desc").First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// Pay executes one charge attempt for a booking. The ledger records the
// attempt with its unified status even when the charge fails or stays
// pending. Each attempt gets a fresh, never-reused order id.
func (s *PaymentService) Pay(ctx context.Context, booking *models.Booking, payer PayerDetails, paymentMethod string) (*PaymentResult, error) {
	if booking.PaymentStatus == models.BookingPaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if active, err := s.activeTransaction(ctx, booking.ID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, ErrPaymentInFlight
	}

	gw, err := s.router.SelectGateway(booking.Currency)
	if err != nil {
		return nil, err
	}

	req := ChargeRequest{
		OrderID:     NewOrderID(),
		BookingID:   booking.ID,
		Amount:      booking.Price,
		Currency:    booking.Currency,
		Description: fmt.Sprintf("%s on %s %s", booking.BookingType, booking.ScheduledDate, booking.ScheduledTime),
		Metadata: map[string]string{
			"user_id":      fmt.Sprintf("%d", booking.UserID),
			"booking_ref":  booking.Reference,
			"session_date": booking.ScheduledDate,
			"session_time": booking.ScheduledTime,
		},
	}

	result, chargeErr := gw.Charge(ctx, req, payer)
	if result == nil {
		result = &PaymentResult{
			Success: false,
			Status:  models.PaymentStatusFailed,
			OrderID: req.OrderID,
		}
		var gwErr *GatewayError
		if errors.As(chargeErr, &gwErr) {
			result.ErrorCode = gwErr.Code
			result.ErrorMessage = gwErr.Message
		} else if chargeErr != nil {
			result.ErrorMessage = chargeErr.Error()
		}
	}

	txn := models.Transaction{
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		Amount:        booking.Price,
		Currency:      booking.Currency,
		Gateway:       gw.ID(),
		PaymentMethod: paymentMethod,
		Status:        result.Status,
		OrderID:       req.OrderID,
		Metadata: map[string]interface{}{
			"session_date":     booking.ScheduledDate,
			"session_time":     booking.ScheduledTime,
			"gym_id":           booking.GymID,
			"duration_minutes": booking.DurationMinutes,
		},
	}
	if result.ProviderTxnID != "" {
		txn.ProviderTxnID = &result.ProviderTxnID
	}
	if result.ReceiptURL != "" {
		txn.ReceiptURL = &result.ReceiptURL
	}
	if result.ErrorMessage != "" {
		txn.Metadata["error"] = result.ErrorMessage
	}
	if err := s.db.WithContext(ctx).Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	if result.Status == models.PaymentStatusCompleted {
		s.settleBookingPayment(ctx, &txn)
	} else if result.Status == models.PaymentStatusFailed {
		s.markBookingPaymentFailed(ctx, txn.BookingID)
	}

	return result, chargeErr
}

// SettleTransaction applies a terminal-or-later provider result to the
// ledger row identified by order id. Duplicate responses for an already
// terminal transaction are dropped before any state mutation.
func (s *PaymentService) SettleTransaction(ctx context.Context, orderID string, result *PaymentResult) error {
	var txn models.Transaction
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	if !CanApplyProviderUpdate(txn.Status) {
		log.Printf("Dropping duplicate provider update for transaction %s (recorded %s, got %s)",
			orderID, txn.Status, result.Status)
		return nil
	}

	updates := map[string]interface{}{"status": result.Status}
	if result.ProviderTxnID != "" {
		updates["provider_txn_id"] = result.ProviderTxnID
	}
	if result.ReceiptURL != "" {
		updates["receipt_url"] = result.ReceiptURL
	}
	if err := s.db.WithContext(ctx).Model(&txn).Updates(updates).Error; err != nil {
		return err
	}
	txn.Status = result.Status

	switch result.Status {
	case models.PaymentStatusCompleted:
		s.settleBookingPayment(ctx, &txn)
	case models.PaymentStatusFailed, models.PaymentStatusCancelled:
		s.markBookingPaymentFailed(ctx, txn.BookingID)
	}
	return nil
}

// settleBookingPayment marks the booking paid and confirms it. Failure to
// confirm (e.g. the booking was canceled while the charge was in flight) is
// logged for reconciliation, never silently retried.
func (s *PaymentService) settleBookingPayment(ctx context.Context, txn *models.Transaction) {
	err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", txn.BookingID).
		Updates(map[string]interface{}{
			"paid_amount":    txn.Amount,
			"payment_status": models.BookingPaymentPaid,
		}).Error
	if err != nil {
		log.Printf("Failed to mark booking %d paid for transaction %s: %v", txn.BookingID, txn.OrderID, err)
		return
	}

	if _, err := s.bookings.Confirm(ctx, txn.BookingID, "payment_gateway"); err != nil {
		if errors.Is(err, ErrStateConflict) {
			log.Printf("Booking %d paid but not confirmable (already transitioned)", txn.BookingID)
			return
		}
		log.Printf("Failed to confirm booking %d after payment: %v", txn.BookingID, err)
	}
}

func (s *PaymentService) markBookingPaymentFailed(ctx context.Context, bookingID uint) {
	err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND payment_status = ?", bookingID, models.BookingPaymentPending).
		Update("payment_status", models.BookingPaymentFailed).Error
	if err != nil {
		log.Printf("Failed to mark booking %d payment failed: %v", bookingID, err)
	}
}

// HandleRegionalNotify processes one notify callback from the regional
// gateway's hosted checkout. Duplicate callbacks are de-duplicated by
// provider transaction id before any state mutation.
func (s *PaymentService) HandleRegionalNotify(ctx context.Context, event *NotifyEvent) error {
	if s.cache != nil && event.PaymentID != "" {
		key := fmt.Sprintf("payment:notify:%s:%d", event.PaymentID, event.StatusCode)
		fresh, err := s.cache.SetNX(ctx, key, time.Now().Unix(), 10*time.Minute)
		if err != nil {
			log.Printf("Notify dedupe check failed for %s: %v", event.PaymentID, err)
		} else if !fresh {
			log.Printf("Dropping duplicate notify callback for payment %s", event.PaymentID)
			return nil
		}
	}

	result := &PaymentResult{
		Success:       event.Status == models.PaymentStatusCompleted,
		Status:        event.Status,
		OrderID:       event.OrderID,
		ProviderTxnID: event.PaymentID,
	}
	return s.SettleTransaction(ctx, event.OrderID, result)
}

// VerifyPending re-polls the gateway for a non-terminal transaction and
// settles it if the provider reached a terminal state.
func (s *PaymentService) VerifyPending(ctx context.Context, txn *models.Transaction) error {
	if txn.Status.IsTerminal() {
		return nil
	}

	gw, err := s.router.GatewayByID(txn.Gateway)
	if err != nil {
		return err
	}

	// The regional gateway is queried by our order id; the international
	// one by the intent id it returned at charge time.
	lookupID := txn.OrderID
	if txn.Gateway == models.PaymentGatewayStripe {
		if txn.ProviderTxnID == nil {
			return ErrTransactionNotFound
		}
		lookupID = *txn.ProviderTxnID
	}

	result, err := gw.Verify(ctx, lookupID)
	if err != nil {
		return err
	}
	if !result.Status.IsTerminal() && result.Status != models.PaymentStatusProcessing {
		return nil
	}
	result.OrderID = txn.OrderID
	return s.SettleTransaction(ctx, txn.OrderID, result)
}

// Refund executes the refund a cancellation computed. The gateway comes
// from the original transaction's recorded gateway, never re-derived from
// the booking's current currency.
func (s *PaymentService) Refund(ctx context.Context, cancellation *models.Cancellation) (*RefundResult, error) {
	if cancellation.RefundStatus == models.RefundStatusNotApplicable {
		return nil, ErrNotCancelable
	}
	if cancellation.RefundStatus == models.RefundStatusProcessed {
		return nil, fmt.Errorf("refund for cancellation %d already processed", cancellation.ID)
	}
	if money.RoundCents(cancellation.RefundAmount+cancellation.CancellationFee) != money.RoundCents(cancellation.OriginalPrice) {
		return nil, ErrAmountMismatch
	}

	var txn models.Transaction
	err := s.db.WithContext(ctx).
		Where("booking_id = ? AND status IN ?", cancellation.BookingID,
			[]models.PaymentStatus{models.PaymentStatusCompleted, models.PaymentStatusPartiallyRefunded}).
		Order("created_at desc").First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// An in-flight payment must reach a terminal state first
			if active, aerr := s.activeTransaction(ctx, cancellation.BookingID); aerr == nil && active != nil {
				return nil, ErrPaymentInFlight
			}
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if txn.ProviderTxnID == nil {
		return nil, ErrTransactionNotFound
	}

	gw, err := s.router.GatewayByID(txn.Gateway)
	if err != nil {
		return nil, err
	}

	result, refundErr := gw.Refund(ctx, *txn.ProviderTxnID, cancellation.RefundAmount, cancellation.Reason)
	if refundErr != nil || result == nil || !result.Success {
		// Left pending for manual or scheduled retry
		log.Printf("Refund for cancellation %d failed, leaving pending: %v", cancellation.ID, refundErr)
		return result, refundErr
	}

	now := time.Now()
	txnStatus := models.PaymentStatusRefunded
	if cancellation.RefundAmount < txn.Amount {
		txnStatus = models.PaymentStatusPartiallyRefunded
	}

	err = s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Model(&models.Cancellation{}).Where("id = ?", cancellation.ID).Updates(map[string]interface{}{
			"refund_status": models.RefundStatusProcessed,
			"refund_txn_id": result.RefundID,
		}).Error; err != nil {
			return err
		}
		if err := dbtx.Model(&models.Transaction{}).Where("id = ?", txn.ID).Updates(map[string]interface{}{
			"status":          txnStatus,
			"refunded_amount": cancellation.RefundAmount,
			"refund_id":       result.RefundID,
			"refunded_at":     now,
		}).Error; err != nil {
			return err
		}
		return dbtx.Model(&models.Booking{}).Where("id = ?", cancellation.BookingID).Updates(map[string]interface{}{
			"refund_status":  models.RefundStatusProcessed,
			"payment_status": models.BookingPaymentRefunded,
		}).Error
	})
	if err != nil {
		// Money moved but our records lag; surface loudly for reconciliation
		return result, fmt.Errorf("refund %s executed but recording failed: %w", result.RefundID, err)
	}

	cancellation.RefundStatus = models.RefundStatusProcessed
	cancellation.RefundTxnID = &result.RefundID

	if booking, berr := s.bookings.Get(ctx, cancellation.BookingID); berr == nil {
		s.notifier.DispatchBookingEvent(ctx, EventRefundProcessed, booking, map[string]string{
			"refund_amount": money.FormatPlain(cancellation.RefundAmount),
			"refund_id":     result.RefundID,
		})
	}

	return result, nil
}

// EstimateFee returns the display fee for an amount in a currency
func (s *PaymentService) EstimateFee(amount float64, currency money.Currency) (float64, error) {
	gw, err := s.router.SelectGateway(currency)
	if err != nil {
		return 0, err
	}
	return gw.EstimateFee(amount), nil
}
