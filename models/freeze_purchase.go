package models

import "time"

// FreezePurchase is an audit row for every streak freeze bought. The coin
// debit and the day-record write happen in the same transaction that creates
// this row, so the ledger always matches the wallet.
type FreezePurchase struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Date       time.Time `gorm:"index;not null" json:"date"`
	CoinsSpent int       `json:"coins_spent"`
	CreatedAt  time.Time `json:"created_at"`
}
