package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

// CancellationService computes refund eligibility from the booking's
// scheduled time and the cancellation instant, records the cancellation and
// drives the state machine. Refund settlement is a separate, later
// operation so policy computation never blocks on gateway latency.
type CancellationService struct {
	db       *gorm.DB
	bookings *BookingService
	payments *PaymentService
	notifier *NotificationService
}

func NewCancellationService(db *gorm.DB, bookings *BookingService, payments *PaymentService, notifier *NotificationService) *CancellationService {
	return &CancellationService{db: db, bookings: bookings, payments: payments, notifier: notifier}
}

// CancelInput describes a cancellation request
type CancelInput struct {
	BookingID     uint
	InitiatedBy   string
	InitiatorRole models.CancellationRole
	Reason        string
	Kind          models.CancellationKind
}

// Quote applies the refund policy to a booking without mutating anything
func (s *CancellationService) Quote(ctx context.Context, bookingID uint) (*money.RefundQuote, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCancelable(booking); err != nil {
		return nil, err
	}

	scheduledAt, err := booking.ScheduledAt(s.bookings.Location())
	if err != nil {
		return nil, &ValidationError{Field: "scheduled_date", Message: "stored schedule is unparsable"}
	}

	quote := money.QuoteRefund(booking.Price, scheduledAt, time.Now())
	return &quote, nil
}

// refundStatusFor decides whether a refund needs settling at all. A zero
// quote closes the cancellation immediately as not_applicable.
func refundStatusFor(refundAmount float64) models.RefundStatus {
	if refundAmount > 0 {
		return models.RefundStatusPending
	}
	return models.RefundStatusNotApplicable
}

func (s *CancellationService) checkCancelable(booking *models.Booking) error {
	if booking.Status == models.BookingStatusCanceled {
		return ErrAlreadyCanceled
	}
	if !models.IsCancelable(booking.Status) {
		return ErrNotCancelable
	}
	return nil
}

// Cancel terminates a booking: it computes the tiered refund, applies the
// final status and refund fields through the state machine, writes the
// cancellation record and emits the canceled event. The refund itself is
// settled later by ProcessRefund.
func (s *CancellationService) Cancel(ctx context.Context, in CancelInput) (*models.Cancellation, error) {
	booking, err := s.bookings.Get(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCancelable(booking); err != nil {
		return nil, err
	}

	scheduledAt, err := booking.ScheduledAt(s.bookings.Location())
	if err != nil {
		return nil, &ValidationError{Field: "scheduled_date", Message: "stored schedule is unparsable"}
	}

	// A past scheduled time yields a 0% refund, not an error
	quote := money.QuoteRefund(booking.Price, scheduledAt, time.Now())
	if money.RoundCents(quote.RefundAmount+quote.Fee) != money.RoundCents(booking.Price) {
		return nil, ErrAmountMismatch
	}

	refundStatus := refundStatusFor(quote.RefundAmount)

	updated, err := s.bookings.ApplyCancellation(ctx, booking.ID, in.InitiatedBy, in.Reason, quote.RefundAmount, refundStatus)
	if err != nil {
		if errors.Is(err, ErrStateConflict) {
			// Lost the race to a concurrent transition; report precisely
			current, gerr := s.bookings.Get(ctx, booking.ID)
			if gerr == nil && current.Status == models.BookingStatusCanceled {
				return nil, ErrAlreadyCanceled
			}
			return nil, ErrNotCancelable
		}
		return nil, err
	}

	kind := in.Kind
	if kind == "" {
		kind = models.CancellationKindUserRequested
	}

	cancellation := models.Cancellation{
		BookingID:          booking.ID,
		UserID:             booking.UserID,
		InitiatedBy:        in.InitiatedBy,
		InitiatorRole:      in.InitiatorRole,
		Reason:             in.Reason,
		Kind:               kind,
		OriginalPrice:      booking.Price,
		RefundAmount:       quote.RefundAmount,
		RefundPercent:      quote.Percent,
		CancellationFee:    quote.Fee,
		HoursBeforeSession: quote.HoursBefore,
		RefundStatus:       refundStatus,
	}
	if err := s.db.WithContext(ctx).Create(&cancellation).Error; err != nil {
		return nil, fmt.Errorf("booking canceled but cancellation record failed: %w", err)
	}

	s.notifier.DispatchBookingEvent(ctx, EventCanceled, updated, map[string]string{
		"refund_amount":  money.FormatPlain(quote.RefundAmount),
		"refund_percent": fmt.Sprintf("%d", quote.Percent),
		"refund_status":  string(refundStatus),
	})

	return &cancellation, nil
}

// ProcessRefund settles a pending refund through the gateway that took the
// original charge and stamps the refund transaction id.
func (s *CancellationService) ProcessRefund(ctx context.Context, cancellationID uint) (*models.Cancellation, error) {
	var cancellation models.Cancellation
	err := s.db.WithContext(ctx).First(&cancellation, cancellationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cancellation %d not found", cancellationID)
		}
		return nil, err
	}

	if _, err := s.payments.Refund(ctx, &cancellation); err != nil {
		return &cancellation, err
	}
	return &cancellation, nil
}
