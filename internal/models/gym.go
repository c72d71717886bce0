package models

import (
	"time"

	"gorm.io/gorm"

	"sixfinity_gym/internal/money"
)

// Gym represents a facility bookings can reference
type Gym struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string         `gorm:"type:varchar(255)" json:"name"`
	Address     string         `gorm:"type:text" json:"address"`
	City        string         `gorm:"type:varchar(100)" json:"city"`
	Country     string         `gorm:"type:varchar(100)" json:"country"`
	DayPassRate float64        `gorm:"type:decimal(15,2)" json:"day_pass_rate"`
	Currency    money.Currency `gorm:"type:varchar(3)" json:"currency"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`

	Trainers []Trainer `gorm:"foreignKey:GymID" json:"trainers,omitempty"`
}

// Trainer represents a personal trainer attached to a gym
type Trainer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	GymID      *uint          `gorm:"index" json:"gym_id,omitempty"`
	Name       string         `gorm:"type:varchar(255)" json:"name"`
	Speciality string         `gorm:"type:varchar(100)" json:"speciality"`
	HourlyRate float64        `gorm:"type:decimal(15,2)" json:"hourly_rate"`
	Currency   money.Currency `gorm:"type:varchar(3)" json:"currency"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
}
