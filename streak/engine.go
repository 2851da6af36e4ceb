package streak

import (
	"context"
	"time"

	"github.com/dailygrind/dailygrind/models"
)

// ComputeAggregates derives the streak aggregates from a user's protected-day
// history. records must be ordered by date descending and contain only days
// with Completed or Frozen set; days with neither are gaps by omission.
//
// Rules:
//   - If the most recent protected day is older than yesterday, the current
//     streak is dead.
//   - Walking backward from the most recent day, completed days extend the
//     current streak; frozen-only days bridge the chain without extending it;
//     a missing calendar day breaks it.
//   - The max streak applies the same counting over the whole history,
//     resetting at every gap.
//   - DaysCompleted counts every protected day (completed or frozen) — that is
//     the pledge-progress semantic, distinct from the streak.
func ComputeAggregates(today time.Time, records []models.DayRecord) Aggregates {
	var agg Aggregates
	if len(records) == 0 {
		return agg
	}

	agg.DaysCompleted = len(records)

	if DayDiff(today, records[0].Date) <= 1 {
		current := 0
		for i, rec := range records {
			if i > 0 && DayDiff(records[i-1].Date, rec.Date) > 1 {
				break
			}
			if rec.Completed {
				current++
			}
		}
		agg.CurrentStreak = current
	}

	run := 0
	for i, rec := range records {
		if i > 0 && DayDiff(records[i-1].Date, rec.Date) > 1 {
			run = 0
		}
		if rec.Completed {
			run++
		}
		if run > agg.MaxStreak {
			agg.MaxStreak = run
		}
	}

	return agg
}

// Recalculate rebuilds the aggregates from the full day history and overwrites
// the cached values. It is idempotent: calling it again without an intervening
// mutation yields the same result. Store errors propagate unchanged.
func Recalculate(ctx context.Context, store DayStore, userID uint, today time.Time) (Aggregates, error) {
	records, err := store.ListProtectedDays(ctx, userID)
	if err != nil {
		return Aggregates{}, err
	}
	agg := ComputeAggregates(today, records)
	if err := store.WriteAggregates(ctx, userID, agg); err != nil {
		return Aggregates{}, err
	}
	return agg, nil
}
