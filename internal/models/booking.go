package models

import (
	"time"

	"gorm.io/gorm"

	"sixfinity_gym/internal/money"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCheckedIn   BookingStatus = "checked_in"
	BookingStatusCompleted   BookingStatus = "completed"
	BookingStatusCanceled    BookingStatus = "canceled"
	BookingStatusNoShow      BookingStatus = "no_show"
	BookingStatusRescheduled BookingStatus = "rescheduled"
)

// BookingType represents what kind of session was booked
type BookingType string

const (
	BookingTypeGymAccess        BookingType = "gym_access"
	BookingTypePersonalTraining BookingType = "personal_training"
	BookingTypeGroupClass       BookingType = "group_class"
	BookingTypeVirtualSession   BookingType = "virtual_session"
)

// BookingPaymentStatus tracks how much of the booking price has settled
type BookingPaymentStatus string

const (
	BookingPaymentPending       BookingPaymentStatus = "pending"
	BookingPaymentPaid          BookingPaymentStatus = "paid"
	BookingPaymentPartiallyPaid BookingPaymentStatus = "partially_paid"
	BookingPaymentRefunded      BookingPaymentStatus = "refunded"
	BookingPaymentFailed        BookingPaymentStatus = "failed"
)

// RefundStatus tracks the settlement state of a cancellation refund
type RefundStatus string

const (
	RefundStatusPending       RefundStatus = "pending"
	RefundStatusApproved      RefundStatus = "approved"
	RefundStatusProcessed     RefundStatus = "processed"
	RefundStatusRejected      RefundStatus = "rejected"
	RefundStatusNotApplicable RefundStatus = "not_applicable"
)

// Booking represents one paid or pending reservation of a trainer or gym
// time slot. Bookings are never hard-deleted; cancellation is a terminal
// state, not a removal.
type Booking struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Reference string `gorm:"type:varchar(64);uniqueIndex" json:"reference"`
	UserID    uint   `gorm:"index" json:"user_id"`
	GymID     *uint  `gorm:"index" json:"gym_id,omitempty"`
	TrainerID *uint  `gorm:"index" json:"trainer_id,omitempty"`

	BookingType     BookingType   `gorm:"type:varchar(30)" json:"booking_type"`
	ScheduledDate   string        `gorm:"type:varchar(10)" json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime   string        `gorm:"type:varchar(5)" json:"scheduled_time"`  // HH:MM
	DurationMinutes int           `json:"duration_minutes"`
	EndTime         string        `gorm:"type:varchar(5)" json:"end_time"` // derived, never set directly
	Status          BookingStatus `gorm:"type:varchar(20);index" json:"status"`

	ConfirmedBy *string    `gorm:"type:varchar(100)" json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`

	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	CheckInMethod *string    `gorm:"type:varchar(30)" json:"check_in_method,omitempty"`
	CheckedOutAt  *time.Time `json:"checked_out_at,omitempty"`

	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`

	Price         float64              `gorm:"type:decimal(15,2)" json:"price"`
	Currency      money.Currency       `gorm:"type:varchar(3)" json:"currency"`
	PaidAmount    float64              `gorm:"type:decimal(15,2)" json:"paid_amount"`
	PaymentStatus BookingPaymentStatus `gorm:"type:varchar(20)" json:"payment_status"`

	CanceledBy       *string      `gorm:"type:varchar(100)" json:"canceled_by,omitempty"`
	CanceledAt       *time.Time   `json:"canceled_at,omitempty"`
	CancelReason     *string      `gorm:"type:text" json:"cancel_reason,omitempty"`
	RefundAmount     *float64     `gorm:"type:decimal(15,2)" json:"refund_amount,omitempty"`
	RefundStatus     RefundStatus `gorm:"type:varchar(20)" json:"refund_status,omitempty"`
	Rating           *int         `json:"rating,omitempty"`
	Review           *string      `gorm:"type:text" json:"review,omitempty"`
	Metadata         map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Gym          *Gym          `gorm:"foreignKey:GymID" json:"gym,omitempty"`
	Trainer      *Trainer      `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
	Details      *BookingDetails `gorm:"foreignKey:BookingID" json:"details,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:BookingID" json:"transactions,omitempty"`
}

// ScheduledAt combines the booking's date and time into an instant in the
// given location.
func (b Booking) ScheduledAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", b.ScheduledDate+" "+b.ScheduledTime, loc)
}

// ComputeEndTime derives the session end time from the scheduled time and
// duration. EndTime is never mutated independently of these two fields.
func ComputeEndTime(scheduledTime string, durationMinutes int) string {
	t, err := time.Parse("15:04", scheduledTime)
	if err != nil {
		return scheduledTime
	}
	return t.Add(time.Duration(durationMinutes) * time.Minute).Format("15:04")
}

// bookingTransitions lists the legal source states for each target state.
// rescheduled re-enters confirmed semantics under the new date/time, so it is
// a legal source wherever confirmed is.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusConfirmed:   {BookingStatusPending},
	BookingStatusCheckedIn:   {BookingStatusConfirmed, BookingStatusRescheduled},
	BookingStatusCompleted:   {BookingStatusCheckedIn},
	BookingStatusCanceled:    {BookingStatusPending, BookingStatusConfirmed, BookingStatusRescheduled},
	BookingStatusNoShow:      {BookingStatusPending, BookingStatusConfirmed, BookingStatusRescheduled},
	BookingStatusRescheduled: {BookingStatusConfirmed, BookingStatusRescheduled},
}

// CanTransition reports whether a booking in state from may move to state to.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range bookingTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// AllowedSources returns the legal source states for a target state.
func AllowedSources(to BookingStatus) []BookingStatus {
	return bookingTransitions[to]
}

// IsCancelable reports whether cancellation is legal from the given state.
// pending and confirmed are the only cancelable states.
func IsCancelable(status BookingStatus) bool {
	return CanTransition(status, BookingStatusCanceled)
}

// BookingDetails is the empty associated record created alongside every
// booking and filled in lazily by the client (goals, notes, equipment).
type BookingDetails struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BookingID uint                   `gorm:"uniqueIndex" json:"booking_id"`
	Notes     *string                `gorm:"type:text" json:"notes,omitempty"`
	Goals     *string                `gorm:"type:text" json:"goals,omitempty"`
	Extra     map[string]interface{} `gorm:"serializer:json" json:"extra,omitempty"`
}

// BookingHistory records a completed session with its actual duration.
type BookingHistory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	BookingID             uint      `gorm:"index" json:"booking_id"`
	UserID                uint      `gorm:"index" json:"user_id"`
	CheckedInAt           time.Time `json:"checked_in_at"`
	CheckedOutAt          time.Time `json:"checked_out_at"`
	ActualDurationMinutes int       `json:"actual_duration_minutes"`
}
