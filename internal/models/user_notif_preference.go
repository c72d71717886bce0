package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationChannel selects how lifecycle events reach the user
type NotificationChannel string

const (
	NotificationChannelPush  NotificationChannel = "push"
	NotificationChannelEmail NotificationChannel = "email"
)

// UserNotifPreference stores how a user wants to receive booking and
// payment lifecycle notifications.
type UserNotifPreference struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint `gorm:"uniqueIndex" json:"user_id"`

	Channel NotificationChannel `gorm:"type:varchar(20);default:'push'" json:"channel"`

	// Per-event opt-outs; reminders default on, marketing is not covered here
	BookingEvents bool `gorm:"default:true" json:"booking_events"`
	PaymentEvents bool `gorm:"default:true" json:"payment_events"`
	Reminders     bool `gorm:"default:true" json:"reminders"`
}
