package streak

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/dailygrind/dailygrind/models"
)

// fakeStore is an in-memory Store for a single user. Transact snapshots state
// and restores it on error, mimicking a database rollback.
type fakeStore struct {
	days    map[string]*models.DayRecord
	coins   int
	agg     Aggregates
	aggSet  bool
	freezes int
}

func newFakeStore(coins int) *fakeStore {
	return &fakeStore{days: map[string]*models.DayRecord{}, coins: coins}
}

func dateKey(date time.Time) string { return date.Format("2006-01-02") }

func (f *fakeStore) GetDay(_ context.Context, _ uint, date time.Time) (*models.DayRecord, error) {
	rec, ok := f.days[dateKey(date)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) UpsertDay(_ context.Context, userID uint, date time.Time, patch DayPatch) error {
	rec, ok := f.days[dateKey(date)]
	if !ok {
		rec = &models.DayRecord{UserID: userID, Date: date}
		f.days[dateKey(date)] = rec
	}
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
	return nil
}

func (f *fakeStore) ListProtectedDays(_ context.Context, _ uint) ([]models.DayRecord, error) {
	var records []models.DayRecord
	for _, rec := range f.days {
		if rec.Completed || rec.Frozen {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	return records, nil
}

func (f *fakeStore) WriteAggregates(_ context.Context, _ uint, agg Aggregates) error {
	f.agg = agg
	f.aggSet = true
	return nil
}

func (f *fakeStore) Balance(_ context.Context, _ uint) (int, error) {
	return f.coins, nil
}

func (f *fakeStore) Debit(_ context.Context, _ uint, amount int) error {
	if f.coins < amount {
		return ErrInsufficientBalance
	}
	f.coins -= amount
	return nil
}

func (f *fakeStore) Credit(_ context.Context, _ uint, amount int) error {
	f.coins += amount
	return nil
}

func (f *fakeStore) RecordFreeze(_ context.Context, _ uint, _ time.Time, _ int) error {
	f.freezes++
	return nil
}

func (f *fakeStore) Transact(_ context.Context, fn func(Store) error) error {
	snapDays := make(map[string]*models.DayRecord, len(f.days))
	for k, v := range f.days {
		cp := *v
		snapDays[k] = &cp
	}
	snapCoins, snapAgg, snapAggSet, snapFreezes := f.coins, f.agg, f.aggSet, f.freezes

	if err := fn(f); err != nil {
		f.days = snapDays
		f.coins, f.agg, f.aggSet, f.freezes = snapCoins, snapAgg, snapAggSet, snapFreezes
		return err
	}
	return nil
}

const testUser uint = 1

func TestOnActivityLogged_MarksDayAndRecalculates(t *testing.T) {
	fs := newFakeStore(0)
	svc := NewService(fs, 50)

	agg, err := svc.OnActivityLogged(context.Background(), testUser, testToday)
	if err != nil {
		t.Fatalf("OnActivityLogged failed: %v", err)
	}
	if agg.CurrentStreak != 1 || agg.DaysCompleted != 1 {
		t.Errorf("aggregates = %+v, want streak 1, days 1", agg)
	}

	rec := fs.days[dateKey(testToday)]
	if rec == nil || !rec.Completed {
		t.Fatal("day record not marked completed")
	}
	if rec.MarkedAt == nil {
		t.Error("MarkedAt not set")
	}
	if !fs.aggSet {
		t.Error("aggregates were not persisted")
	}
}

func TestOnActivityLogged_SupersedesFreeze(t *testing.T) {
	fs := newFakeStore(0)
	fs.days[dateKey(testToday)] = &models.DayRecord{UserID: testUser, Date: testToday, Frozen: true}
	svc := NewService(fs, 50)

	if _, err := svc.OnActivityLogged(context.Background(), testUser, testToday); err != nil {
		t.Fatalf("OnActivityLogged failed: %v", err)
	}

	rec := fs.days[dateKey(testToday)]
	if !rec.Completed || rec.Frozen {
		t.Errorf("record = completed=%v frozen=%v, want completed and unfrozen", rec.Completed, rec.Frozen)
	}
}

func TestOnLastActivityRemoved_UnmarksAndRecalculates(t *testing.T) {
	fs := newFakeStore(0)
	svc := NewService(fs, 50)
	ctx := context.Background()

	if _, err := svc.OnActivityLogged(ctx, testUser, testToday); err != nil {
		t.Fatalf("setup log failed: %v", err)
	}

	agg, recalced, err := svc.OnLastActivityRemoved(ctx, testUser, testToday, 0, testToday)
	if err != nil {
		t.Fatalf("OnLastActivityRemoved failed: %v", err)
	}
	if !recalced {
		t.Fatal("expected recalculation to run")
	}
	if agg.CurrentStreak != 0 || agg.DaysCompleted != 0 {
		t.Errorf("aggregates after unmark = %+v, want zeros", agg)
	}

	rec := fs.days[dateKey(testToday)]
	if rec == nil {
		t.Fatal("day record should survive unmarking")
	}
	if rec.Completed {
		t.Error("day still completed after last activity removed")
	}
	if rec.MarkedAt != nil {
		t.Error("MarkedAt not cleared")
	}
}

func TestOnLastActivityRemoved_NoOpWhenActivitiesRemain(t *testing.T) {
	fs := newFakeStore(0)
	svc := NewService(fs, 50)
	ctx := context.Background()

	if _, err := svc.OnActivityLogged(ctx, testUser, testToday); err != nil {
		t.Fatalf("setup log failed: %v", err)
	}

	_, recalced, err := svc.OnLastActivityRemoved(ctx, testUser, testToday, 2, testToday)
	if err != nil {
		t.Fatalf("OnLastActivityRemoved failed: %v", err)
	}
	if recalced {
		t.Error("recalculation ran although activities remain")
	}
	if rec := fs.days[dateKey(testToday)]; !rec.Completed {
		t.Error("day lost completion although activities remain")
	}
}

func TestOnFreezePurchased_DebitsAndFreezes(t *testing.T) {
	fs := newFakeStore(80)
	svc := NewService(fs, 50)

	yesterday := testToday.AddDate(0, 0, -1)
	agg, err := svc.OnFreezePurchased(context.Background(), testUser, yesterday, testToday)
	if err != nil {
		t.Fatalf("OnFreezePurchased failed: %v", err)
	}

	if fs.coins != 30 {
		t.Errorf("coins = %d, want 30 after debit", fs.coins)
	}
	if fs.freezes != 1 {
		t.Errorf("freeze ledger rows = %d, want 1", fs.freezes)
	}
	rec := fs.days[dateKey(yesterday)]
	if rec == nil || !rec.Frozen {
		t.Fatal("day record not frozen")
	}
	if agg.DaysCompleted != 1 {
		t.Errorf("DaysCompleted = %d, want 1 (frozen day is protected)", agg.DaysCompleted)
	}
	if agg.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0 (freeze never increments)", agg.CurrentStreak)
	}
}

func TestOnFreezePurchased_RejectsCompletedDay(t *testing.T) {
	fs := newFakeStore(200)
	svc := NewService(fs, 50)
	ctx := context.Background()

	if _, err := svc.OnActivityLogged(ctx, testUser, testToday); err != nil {
		t.Fatalf("setup log failed: %v", err)
	}
	before := *fs.days[dateKey(testToday)]

	_, err := svc.OnFreezePurchased(ctx, testUser, testToday, testToday)
	if !errors.Is(err, ErrDayAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrDayAlreadyCompleted", err)
	}

	if fs.coins != 200 {
		t.Errorf("coins = %d, want 200 (no debit on rejection)", fs.coins)
	}
	if fs.freezes != 0 {
		t.Errorf("freeze ledger rows = %d, want 0", fs.freezes)
	}
	after := *fs.days[dateKey(testToday)]
	if before.Completed != after.Completed || before.Frozen != after.Frozen {
		t.Error("day record mutated by rejected freeze")
	}
}

func TestOnFreezePurchased_RejectsDoubleFreeze(t *testing.T) {
	fs := newFakeStore(200)
	svc := NewService(fs, 50)
	ctx := context.Background()

	if _, err := svc.OnFreezePurchased(ctx, testUser, testToday, testToday); err != nil {
		t.Fatalf("first freeze failed: %v", err)
	}
	_, err := svc.OnFreezePurchased(ctx, testUser, testToday, testToday)
	if !errors.Is(err, ErrDayAlreadyFrozen) {
		t.Fatalf("err = %v, want ErrDayAlreadyFrozen", err)
	}
	if fs.coins != 150 {
		t.Errorf("coins = %d, want 150 (only one debit)", fs.coins)
	}
}

func TestOnFreezePurchased_InsufficientBalance(t *testing.T) {
	fs := newFakeStore(10)
	svc := NewService(fs, 50)

	_, err := svc.OnFreezePurchased(context.Background(), testUser, testToday, testToday)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if fs.coins != 10 {
		t.Errorf("coins = %d, want 10", fs.coins)
	}
	if fs.days[dateKey(testToday)] != nil {
		t.Error("day record created despite failed purchase")
	}
}

func TestOnFreezePurchased_RejectsFutureDate(t *testing.T) {
	fs := newFakeStore(200)
	svc := NewService(fs, 50)

	tomorrow := testToday.AddDate(0, 0, 1)
	_, err := svc.OnFreezePurchased(context.Background(), testUser, tomorrow, testToday)
	if !errors.Is(err, ErrFreezeDateInFuture) {
		t.Fatalf("err = %v, want ErrFreezeDateInFuture", err)
	}
}

func TestFreezeThenLog_BridgesStreak(t *testing.T) {
	fs := newFakeStore(100)
	svc := NewService(fs, 50)
	ctx := context.Background()

	// Completed two days ago, froze yesterday, completing today: streak of 2
	if _, err := svc.OnActivityLogged(ctx, testUser, day(2)); err != nil {
		t.Fatalf("log day-2 failed: %v", err)
	}
	if _, err := svc.OnFreezePurchased(ctx, testUser, day(1), testToday); err != nil {
		t.Fatalf("freeze day-1 failed: %v", err)
	}
	agg, err := svc.OnActivityLogged(ctx, testUser, testToday)
	if err != nil {
		t.Fatalf("log today failed: %v", err)
	}

	if agg.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", agg.CurrentStreak)
	}
	if agg.DaysCompleted != 3 {
		t.Errorf("DaysCompleted = %d, want 3", agg.DaysCompleted)
	}
}
