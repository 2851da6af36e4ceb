package models

import "time"

// DayRecord is one calendar day of a user's history. Date is the user-local
// calendar date normalized to UTC midnight; storing the normalized token (never
// a wall-clock timestamp) keeps the DATE column free of timezone drift.
//
// Completed and Frozen may both be set in storage; recalculation treats
// Completed as authoritative. Rows are created lazily and never deleted by
// streak logic, only toggled.
type DayRecord struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_day_user_date" json:"user_id"`
	Date      time.Time  `gorm:"not null;uniqueIndex:idx_day_user_date" json:"date"`
	Completed bool       `gorm:"default:false" json:"completed"`
	Frozen    bool       `gorm:"default:false" json:"frozen"`
	MarkedAt  *time.Time `json:"marked_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Protected reports whether the day counts toward pledge progress.
func (d *DayRecord) Protected() bool {
	return d.Completed || d.Frozen
}
