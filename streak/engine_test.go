package streak

import (
	"testing"
	"time"

	"github.com/dailygrind/dailygrind/models"
)

var testToday = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

// day returns the normalized date offset days before testToday.
func day(offset int) time.Time {
	return testToday.AddDate(0, 0, -offset)
}

func completed(offset int) models.DayRecord {
	return models.DayRecord{Date: day(offset), Completed: true}
}

func frozen(offset int) models.DayRecord {
	return models.DayRecord{Date: day(offset), Frozen: true}
}

func TestComputeAggregates_EmptyHistory(t *testing.T) {
	agg := ComputeAggregates(testToday, nil)
	if agg.CurrentStreak != 0 || agg.MaxStreak != 0 || agg.DaysCompleted != 0 {
		t.Errorf("empty history: got %+v, want all zeros", agg)
	}
}

func TestComputeAggregates_ConsecutiveChain(t *testing.T) {
	records := []models.DayRecord{completed(0), completed(1), completed(2)}
	agg := ComputeAggregates(testToday, records)
	if agg.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3", agg.CurrentStreak)
	}
	if agg.MaxStreak != 3 {
		t.Errorf("MaxStreak = %d, want 3", agg.MaxStreak)
	}
	if agg.DaysCompleted != 3 {
		t.Errorf("DaysCompleted = %d, want 3", agg.DaysCompleted)
	}
}

func TestComputeAggregates_GapKillsCurrentNotHistory(t *testing.T) {
	// Completed today and the day before yesterday; yesterday missing
	records := []models.DayRecord{completed(0), completed(2)}
	agg := ComputeAggregates(testToday, records)
	if agg.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", agg.CurrentStreak)
	}
	if agg.MaxStreak != 1 {
		t.Errorf("MaxStreak = %d, want 1", agg.MaxStreak)
	}
	if agg.DaysCompleted != 2 {
		t.Errorf("DaysCompleted = %d, want 2", agg.DaysCompleted)
	}
}

func TestComputeAggregates_FreezeBridgesWithoutIncrementing(t *testing.T) {
	records := []models.DayRecord{completed(0), frozen(1), completed(2)}
	agg := ComputeAggregates(testToday, records)
	if agg.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2 (frozen day bridges, does not count)", agg.CurrentStreak)
	}
	if agg.MaxStreak != 2 {
		t.Errorf("MaxStreak = %d, want 2", agg.MaxStreak)
	}
	if agg.DaysCompleted != 3 {
		t.Errorf("DaysCompleted = %d, want 3 (frozen days count toward pledge)", agg.DaysCompleted)
	}
}

func TestComputeAggregates_StaleHistoryIsDead(t *testing.T) {
	// Last protected day was three days ago; streak is dead but history stands
	records := []models.DayRecord{completed(3), completed(4), completed(5)}
	agg := ComputeAggregates(testToday, records)
	if agg.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0 (most recent day older than yesterday)", agg.CurrentStreak)
	}
	if agg.MaxStreak != 3 {
		t.Errorf("MaxStreak = %d, want 3", agg.MaxStreak)
	}
	if agg.DaysCompleted != 3 {
		t.Errorf("DaysCompleted = %d, want 3", agg.DaysCompleted)
	}
}

func TestComputeAggregates_YesterdayKeepsStreakAlive(t *testing.T) {
	// Nothing logged today yet; yesterday's chain still counts
	records := []models.DayRecord{completed(1), completed(2)}
	agg := ComputeAggregates(testToday, records)
	if agg.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", agg.CurrentStreak)
	}
}

func TestComputeAggregates_MaxStreakScansPastGaps(t *testing.T) {
	// Recent short run, older longer run separated by a gap
	records := []models.DayRecord{
		completed(0), completed(1),
		completed(5), completed(6), frozen(7), completed(8), completed(9),
	}
	agg := ComputeAggregates(testToday, records)
	if agg.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", agg.CurrentStreak)
	}
	if agg.MaxStreak != 4 {
		t.Errorf("MaxStreak = %d, want 4 (older run bridged by a freeze)", agg.MaxStreak)
	}
	if agg.DaysCompleted != 7 {
		t.Errorf("DaysCompleted = %d, want 7", agg.DaysCompleted)
	}
}

func TestComputeAggregates_FrozenOnlyTodayKeepsChainAlive(t *testing.T) {
	records := []models.DayRecord{frozen(0), completed(1), completed(2)}
	agg := ComputeAggregates(testToday, records)
	if agg.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", agg.CurrentStreak)
	}
}

func TestComputeAggregates_CompletedAuthoritativeOverFrozen(t *testing.T) {
	both := models.DayRecord{Date: day(1), Completed: true, Frozen: true}
	records := []models.DayRecord{completed(0), both}
	agg := ComputeAggregates(testToday, records)
	if agg.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2 (completed wins when both flags set)", agg.CurrentStreak)
	}
}

func TestComputeAggregates_Idempotent(t *testing.T) {
	records := []models.DayRecord{completed(0), frozen(1), completed(2), completed(5)}
	first := ComputeAggregates(testToday, records)
	second := ComputeAggregates(testToday, records)
	if first != second {
		t.Errorf("recomputation differed: %+v vs %+v", first, second)
	}
}
