package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

// BookingService owns the booking lifecycle and enforces legal transitions.
// Every transition is a conditional update guarded by the booking's current
// status: if the precondition no longer holds the update affects zero rows
// and the call fails with ErrStateConflict instead of silently overwriting.
type BookingService struct {
	db       *gorm.DB
	notifier *NotificationService
	loc      *time.Location
}

func NewBookingService(db *gorm.DB, notifier *NotificationService, loc *time.Location) *BookingService {
	if loc == nil {
		loc = time.Local
	}
	return &BookingService{db: db, notifier: notifier, loc: loc}
}

// Location returns the timezone bookings are scheduled in
func (s *BookingService) Location() *time.Location { return s.loc }

// CreateBookingInput is the draft the UI submits
type CreateBookingInput struct {
	UserID          uint
	GymID           *uint
	TrainerID       *uint
	BookingType     models.BookingType
	ScheduledDate   string // YYYY-MM-DD
	ScheduledTime   string // HH:MM
	DurationMinutes int
	Price           float64
	Currency        money.Currency
	Metadata        map[string]interface{}
}

func (in CreateBookingInput) validate() error {
	switch in.BookingType {
	case models.BookingTypeGymAccess, models.BookingTypePersonalTraining,
		models.BookingTypeGroupClass, models.BookingTypeVirtualSession:
	default:
		return &ValidationError{Field: "booking_type", Message: "unknown type " + string(in.BookingType)}
	}
	if _, err := time.Parse("2006-01-02", in.ScheduledDate); err != nil {
		return &ValidationError{Field: "scheduled_date", Message: "expected YYYY-MM-DD"}
	}
	if _, err := time.Parse("15:04", in.ScheduledTime); err != nil {
		return &ValidationError{Field: "scheduled_time", Message: "expected HH:MM"}
	}
	if in.DurationMinutes <= 0 {
		return &ValidationError{Field: "duration_minutes", Message: "must be positive"}
	}
	if in.Price < 0 {
		return &ValidationError{Field: "price", Message: "must not be negative"}
	}
	if in.Currency != money.CurrencyLKR && in.Currency != money.CurrencyUSD {
		return &ValidationError{Field: "currency", Message: "unsupported currency " + string(in.Currency)}
	}
	return nil
}

// Create stores a new booking in pending with an empty details record
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	booking := models.Booking{
		Reference:       uuid.New().String(),
		UserID:          in.UserID,
		GymID:           in.GymID,
		TrainerID:       in.TrainerID,
		BookingType:     in.BookingType,
		ScheduledDate:   in.ScheduledDate,
		ScheduledTime:   in.ScheduledTime,
		DurationMinutes: in.DurationMinutes,
		EndTime:         models.ComputeEndTime(in.ScheduledTime, in.DurationMinutes),
		Status:          models.BookingStatusPending,
		Price:           in.Price,
		Currency:        in.Currency,
		PaymentStatus:   models.BookingPaymentPending,
		Metadata:        in.Metadata,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return tx.Create(&models.BookingDetails{BookingID: booking.ID}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return &booking, nil
}

// Get loads a booking by id
func (s *BookingService) Get(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Preload("Gym").Preload("Trainer").First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// transition applies updates iff the booking currently sits in one of the
// legal source states for target. Zero affected rows means the precondition
// was lost to a concurrent transition.
func (s *BookingService) transition(ctx context.Context, id uint, target models.BookingStatus, updates map[string]interface{}) (*models.Booking, error) {
	sources := models.AllowedSources(target)
	updates["status"] = target

	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return nil, ErrBookingNotFound
		}
		return nil, ErrStateConflict
	}

	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// Confirm moves a pending booking to confirmed and emits booking_confirmed
func (s *BookingService) Confirm(ctx context.Context, id uint, confirmedBy string) (*models.Booking, error) {
	now := time.Now()
	booking, err := s.transition(ctx, id, models.BookingStatusConfirmed, map[string]interface{}{
		"confirmed_by": confirmedBy,
		"confirmed_at": now,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.DispatchBookingEvent(ctx, EventBookingConfirmed, booking, nil)
	return booking, nil
}

// CheckIn moves a confirmed booking to checked_in and emits session_started
func (s *BookingService) CheckIn(ctx context.Context, id uint, method string) (*models.Booking, error) {
	if method == "" {
		return nil, &ValidationError{Field: "method", Message: "check-in method is required"}
	}

	now := time.Now()
	booking, err := s.transition(ctx, id, models.BookingStatusCheckedIn, map[string]interface{}{
		"checked_in_at":   now,
		"check_in_method": method,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.DispatchBookingEvent(ctx, EventSessionStarted, booking, nil)
	return booking, nil
}

// ActualDurationMinutes is the whole-minute session length recorded in the
// history row appended on checkout.
func ActualDurationMinutes(checkedIn, checkedOut time.Time) int {
	return int(checkedOut.Sub(checkedIn).Minutes())
}

// CheckOut moves a checked_in booking to completed, appends a history
// record with the actual session duration and emits session_completed.
func (s *BookingService) CheckOut(ctx context.Context, id uint) (*models.Booking, error) {
	now := time.Now()
	booking, err := s.transition(ctx, id, models.BookingStatusCompleted, map[string]interface{}{
		"checked_out_at": now,
	})
	if err != nil {
		return nil, err
	}

	if booking.CheckedInAt != nil {
		history := models.BookingHistory{
			BookingID:             booking.ID,
			UserID:                booking.UserID,
			CheckedInAt:           *booking.CheckedInAt,
			CheckedOutAt:          now,
			ActualDurationMinutes: ActualDurationMinutes(*booking.CheckedInAt, now),
		}
		if err := s.db.WithContext(ctx).Create(&history).Error; err != nil {
			log.Printf("Failed to record booking history for booking %d: %v", booking.ID, err)
		}
	}

	s.notifier.DispatchBookingEvent(ctx, EventSessionCompleted, booking, nil)
	return booking, nil
}

// Reschedule overwrites a confirmed booking's date and time. Payment fields
// are never touched.
func (s *BookingService) Reschedule(ctx context.Context, id uint, newDate, newTime string) (*models.Booking, error) {
	if _, err := time.Parse("2006-01-02", newDate); err != nil {
		return nil, &ValidationError{Field: "scheduled_date", Message: "expected YYYY-MM-DD"}
	}
	if _, err := time.Parse("15:04", newTime); err != nil {
		return nil, &ValidationError{Field: "scheduled_time", Message: "expected HH:MM"}
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	booking, err := s.transition(ctx, id, models.BookingStatusRescheduled, map[string]interface{}{
		"scheduled_date": newDate,
		"scheduled_time": newTime,
		"end_time":       models.ComputeEndTime(newTime, current.DurationMinutes),
	})
	if err != nil {
		return nil, err
	}

	s.notifier.DispatchBookingEvent(ctx, EventRescheduled, booking, nil)
	return booking, nil
}

// MarkNoShow marks a booking whose session passed without a check-in
func (s *BookingService) MarkNoShow(ctx context.Context, id uint) (*models.Booking, error) {
	return s.transition(ctx, id, models.BookingStatusNoShow, map[string]interface{}{})
}

// ApplyCancellation atomically applies the final status and refund fields
// computed by the cancellation engine. The engine validates policy; this
// only guards the transition itself.
func (s *BookingService) ApplyCancellation(ctx context.Context, id uint, initiatedBy, reason string, refundAmount float64, refundStatus models.RefundStatus) (*models.Booking, error) {
	now := time.Now()
	return s.transition(ctx, id, models.BookingStatusCanceled, map[string]interface{}{
		"canceled_by":   initiatedBy,
		"canceled_at":   now,
		"cancel_reason": reason,
		"refund_amount": refundAmount,
		"refund_status": refundStatus,
	})
}

// Rate stores a rating and optional review on a completed booking
func (s *BookingService) Rate(ctx context.Context, id uint, rating int, review string) (*models.Booking, error) {
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, ErrStateConflict
	}

	updates := map[string]interface{}{"rating": rating}
	if review != "" {
		updates["review"] = review
	}
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
