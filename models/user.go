package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account on the platform. Passwords are stored as bcrypt hashes only.
// Streak aggregates (CurrentStreak, MaxStreak, DaysCompleted) are a cache derived from
// the user's day records; only the recalculation engine writes them.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string `gorm:"size:255" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`

	// Timezone is an IANA identifier such as "Asia/Kolkata".
	Timezone string `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	// ReminderTime is a local wall-clock time "HH:MM" (24h, zero padded). Empty disables reminders.
	ReminderTime string `gorm:"size:5" json:"reminder_time"`

	Coins int `gorm:"default:0" json:"coins"`

	PledgeStartDate  time.Time `json:"pledge_start_date"`
	PledgeLengthDays int       `gorm:"default:100" json:"pledge_length_days"`
	PledgeRewarded   bool      `gorm:"default:false" json:"pledge_rewarded"`

	CurrentStreak int `gorm:"default:0" json:"current_streak"`
	MaxStreak     int `gorm:"default:0" json:"max_streak"`
	DaysCompleted int `gorm:"default:0" json:"days_completed"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Problems   []Problem   `json:"-"`
	DayRecords []DayRecord `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
