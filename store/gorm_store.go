// Package store implements the streak persistence ports on top of GORM/MySQL.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dailygrind/dailygrind/models"
	"github.com/dailygrind/dailygrind/streak"
)

// GormStore adapts a *gorm.DB (or an open transaction) to streak.Store.
type GormStore struct {
	db *gorm.DB
}

// New wraps db in a GormStore.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetDay returns the day record for (userID, date), or (nil, nil) when absent.
func (s *GormStore) GetDay(ctx context.Context, userID uint, date time.Time) (*models.DayRecord, error) {
	var rec models.DayRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertDay creates the day record if absent and merges the patch otherwise.
func (s *GormStore) UpsertDay(ctx context.Context, userID uint, date time.Time, patch streak.DayPatch) error {
	rec, err := s.GetDay(ctx, userID, date)
	if err != nil {
		return err
	}

	if rec == nil {
		fresh := models.DayRecord{UserID: userID, Date: date}
		applyPatch(&fresh, patch)
		return s.db.WithContext(ctx).Create(&fresh).Error
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}
	if patch.Frozen != nil {
		updates["frozen"] = *patch.Frozen
	}
	if patch.ClearMarkedAt {
		updates["marked_at"] = nil
	} else if patch.MarkedAt != nil {
		updates["marked_at"] = *patch.MarkedAt
	}
	return s.db.WithContext(ctx).
		Model(&models.DayRecord{}).
		Where("id = ?", rec.ID).
		Updates(updates).Error
}

func applyPatch(rec *models.DayRecord, patch streak.DayPatch) {
	if patch.Completed != nil {
		rec.Completed = *patch.Completed
	}
	if patch.Frozen != nil {
		rec.Frozen = *patch.Frozen
	}
	if patch.ClearMarkedAt {
		rec.MarkedAt = nil
	} else if patch.MarkedAt != nil {
		t := *patch.MarkedAt
		rec.MarkedAt = &t
	}
}

// ListProtectedDays returns all completed-or-frozen days, newest first.
func (s *GormStore) ListProtectedDays(ctx context.Context, userID uint) ([]models.DayRecord, error) {
	var records []models.DayRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND (completed = ? OR frozen = ?)", userID, true, true).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

// WriteAggregates overwrites the cached streak fields on the user row. The
// user must exist; recalculating for a missing user is a caller bug.
func (s *GormStore) WriteAggregates(ctx context.Context, userID uint, agg streak.Aggregates) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"current_streak": agg.CurrentStreak,
			"max_streak":     agg.MaxStreak,
			"days_completed": agg.DaysCompleted,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Balance reads the user's coin balance, taking a row lock when called inside
// a transaction so freeze purchases cannot race each other.
func (s *GormStore) Balance(ctx context.Context, userID uint) (int, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "coins").
		First(&user, userID).Error
	if err != nil {
		return 0, err
	}
	return user.Coins, nil
}

// Debit subtracts amount from the user's coins, failing without partial effect
// when the balance is short.
func (s *GormStore) Debit(ctx context.Context, userID uint, amount int) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND coins >= ?", userID, amount).
		Update("coins", gorm.Expr("coins - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return streak.ErrInsufficientBalance
	}
	return nil
}

// Credit adds amount to the user's coins.
func (s *GormStore) Credit(ctx context.Context, userID uint, amount int) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("coins", gorm.Expr("coins + ?", amount)).Error
}

// RecordFreeze appends an audit row for a freeze purchase.
func (s *GormStore) RecordFreeze(ctx context.Context, userID uint, date time.Time, coinsSpent int) error {
	return s.db.WithContext(ctx).Create(&models.FreezePurchase{
		UserID:     userID,
		Date:       date,
		CoinsSpent: coinsSpent,
	}).Error
}

// Transact runs fn against a store bound to a single database transaction.
func (s *GormStore) Transact(ctx context.Context, fn func(streak.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
