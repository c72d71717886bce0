package models

import (
	"time"

	"gorm.io/gorm"
)

// CancellationRole identifies who initiated a cancellation
type CancellationRole string

const (
	CancellationRoleUser    CancellationRole = "user"
	CancellationRoleGym     CancellationRole = "gym"
	CancellationRoleTrainer CancellationRole = "trainer"
	CancellationRoleAdmin   CancellationRole = "admin"
)

// CancellationKind distinguishes how a booking was terminated
type CancellationKind string

const (
	CancellationKindUserRequested CancellationKind = "user_requested"
	CancellationKindReschedule    CancellationKind = "reschedule"
	CancellationKindNoShow        CancellationKind = "no_show"
	CancellationKindAdmin         CancellationKind = "admin"
)

// Cancellation records why, when and how a booking was terminated and what
// refund applies. Invariant: RefundAmount + CancellationFee == OriginalPrice
// exactly, down to the smallest currency unit.
type Cancellation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BookingID uint `gorm:"index" json:"booking_id"`
	UserID    uint `gorm:"index" json:"user_id"`

	InitiatedBy   string           `gorm:"type:varchar(100)" json:"initiated_by"`
	InitiatorRole CancellationRole `gorm:"type:varchar(20)" json:"initiator_role"`
	Reason        string           `gorm:"type:text" json:"reason"`
	Kind          CancellationKind `gorm:"type:varchar(30)" json:"kind"`

	OriginalPrice      float64 `gorm:"type:decimal(15,2)" json:"original_price"`
	RefundAmount       float64 `gorm:"type:decimal(15,2)" json:"refund_amount"`
	RefundPercent      int     `json:"refund_percent"`
	CancellationFee    float64 `gorm:"type:decimal(15,2)" json:"cancellation_fee"`
	HoursBeforeSession float64 `json:"hours_before_session"`

	RefundStatus RefundStatus `gorm:"type:varchar(20)" json:"refund_status"`
	RefundTxnID  *string      `gorm:"type:varchar(191)" json:"refund_txn_id,omitempty"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
