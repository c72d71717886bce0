package models

import (
	"time"

	"gorm.io/gorm"

	"sixfinity_gym/internal/money"
)

// PaymentGateway identifies which external provider handled a transaction
type PaymentGateway string

const (
	PaymentGatewayPayHere PaymentGateway = "payhere"
	PaymentGatewayStripe  PaymentGateway = "stripe"
)

// PaymentStatus is the unified status vocabulary all gateway adapters
// normalize into, independent of provider-native strings or codes.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusProcessing        PaymentStatus = "processing"
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusCancelled         PaymentStatus = "cancelled"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// IsTerminal reports whether a unified status is final. Ledger rows with a
// terminal status are immutable except for refund sub-fields appended by a
// later refund operation.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// Transaction is one attempt to move money for a booking. The ledger is
// append-mostly: a booking may carry more than one transaction only when
// prior attempts ended terminal and non-completed.
type Transaction struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BookingID uint `gorm:"index" json:"booking_id"`
	UserID    uint `gorm:"index" json:"user_id"`

	Amount        float64        `gorm:"type:decimal(15,2)" json:"amount"`
	Currency      money.Currency `gorm:"type:varchar(3)" json:"currency"`
	Gateway       PaymentGateway `gorm:"type:varchar(30)" json:"gateway"`
	PaymentMethod string         `gorm:"type:varchar(50)" json:"payment_method"`
	Status        PaymentStatus  `gorm:"type:varchar(30);index" json:"status"`

	OrderID       string  `gorm:"type:varchar(100);uniqueIndex" json:"order_id"`
	ProviderTxnID *string `gorm:"type:varchar(191);index" json:"provider_txn_id,omitempty"`
	ReceiptURL    *string `gorm:"type:text" json:"receipt_url,omitempty"`

	RefundedAmount *float64   `gorm:"type:decimal(15,2)" json:"refunded_amount,omitempty"`
	RefundID       *string    `gorm:"type:varchar(191)" json:"refund_id,omitempty"`
	RefundedAt     *time.Time `json:"refunded_at,omitempty"`

	Metadata map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
