package models

import (
	"time"

	"gorm.io/gorm"
)

// UserType represents the type of user
type UserType string

const (
	UserTypeAdmin  UserType = "Admin"
	UserTypeMember UserType = "Member"
)

// User represents a member of the gym app
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	FirebaseUID string   `gorm:"type:varchar(128);uniqueIndex" json:"firebase_uid"`
	Name        string   `gorm:"type:varchar(255)" json:"name"`
	Phone       string   `gorm:"type:varchar(50)" json:"phone"`
	Email       string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Address     string   `gorm:"type:text" json:"address"`
	City        string   `gorm:"type:varchar(100)" json:"city"`
	Country     string   `gorm:"type:varchar(100)" json:"country"`
	UserType    UserType `gorm:"type:varchar(20);default:'Member'" json:"user_type"`

	// Relationships
	Bookings      []Booking      `gorm:"foreignKey:UserID" json:"bookings,omitempty"`
	DeviceTokens  []DeviceToken  `gorm:"foreignKey:UserID" json:"device_tokens,omitempty"`
	Transactions  []Transaction  `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	Cancellations []Cancellation `gorm:"foreignKey:UserID" json:"cancellations,omitempty"`
}

// FirstLast splits the user's name into the first/last pair the regional
// gateway's checkout form expects.
func (u User) FirstLast() (string, string) {
	first, last := u.Name, ""
	for i := len(u.Name) - 1; i >= 0; i-- {
		if u.Name[i] == ' ' {
			first, last = u.Name[:i], u.Name[i+1:]
			break
		}
	}
	return first, last
}

// DeviceToken is an FCM registration token for one of the user's devices
type DeviceToken struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID   uint   `gorm:"index" json:"user_id"`
	Token    string `gorm:"type:varchar(512);uniqueIndex" json:"token"`
	Platform string `gorm:"type:varchar(20)" json:"platform"` // android / ios
}
