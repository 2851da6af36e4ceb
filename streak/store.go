package streak

import (
	"context"
	"time"

	"github.com/dailygrind/dailygrind/models"
)

// Aggregates is the derived per-user streak state. It is a cache over the day
// history, rebuilt from scratch on every mutation, never patched incrementally.
type Aggregates struct {
	CurrentStreak int `json:"current_streak"`
	MaxStreak     int `json:"max_streak"`
	DaysCompleted int `json:"days_completed"`
}

// DayPatch is a partial update for a day record. Nil fields are left untouched;
// ClearMarkedAt nulls MarkedAt regardless of the MarkedAt field.
type DayPatch struct {
	Completed     *bool
	Frozen        *bool
	MarkedAt      *time.Time
	ClearMarkedAt bool
}

// DayStore is the persistence port for per-day records and the cached
// aggregates. Implementations must return (nil, nil) from GetDay when the
// record is absent, and ListProtectedDays must order by date descending so the
// engine can early-exit on the liveness check.
type DayStore interface {
	GetDay(ctx context.Context, userID uint, date time.Time) (*models.DayRecord, error)
	UpsertDay(ctx context.Context, userID uint, date time.Time, patch DayPatch) error
	ListProtectedDays(ctx context.Context, userID uint) ([]models.DayRecord, error)
	WriteAggregates(ctx context.Context, userID uint, agg Aggregates) error
}

// Wallet is the virtual-currency port. Debit must fail atomically (no partial
// deduction) when the balance is insufficient.
type Wallet interface {
	Balance(ctx context.Context, userID uint) (int, error)
	Debit(ctx context.Context, userID uint, amount int) error
	Credit(ctx context.Context, userID uint, amount int) error
}

// Store combines the day and wallet ports with transactional execution.
// Transact runs fn against a store bound to one transaction; the mutation and
// the recalculation that follows it commit or roll back together.
type Store interface {
	DayStore
	Wallet
	RecordFreeze(ctx context.Context, userID uint, date time.Time, coinsSpent int) error
	Transact(ctx context.Context, fn func(Store) error) error
}
