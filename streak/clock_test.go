package streak

import (
	"testing"
	"time"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) failed: %v", name, err)
	}
	return loc
}

func TestTodayAt_TimezoneBoundary(t *testing.T) {
	// 22:00 UTC on Jan 1 is already Jan 2 03:30 in Kolkata (UTC+5:30)
	instant := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	kolkata := mustZone(t, "Asia/Kolkata")

	got := TodayAt(instant, kolkata)
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("TodayAt(kolkata) = %v, want %v", got, want)
	}

	got = TodayAt(instant, time.UTC)
	want = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("TodayAt(UTC) = %v, want %v", got, want)
	}
}

func TestRealStartOfDayAt_IsAnInstant(t *testing.T) {
	instant := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	kolkata := mustZone(t, "Asia/Kolkata")

	got := RealStartOfDayAt(instant, kolkata)
	want := time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("RealStartOfDayAt = %v, want %v", got.UTC(), want)
	}
}

func TestDeadlineAt(t *testing.T) {
	instant := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	kolkata := mustZone(t, "Asia/Kolkata")

	got := DeadlineAt(instant, kolkata, 22, 0)
	want := time.Date(2024, 1, 2, 16, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DeadlineAt = %v, want %v", got.UTC(), want)
	}
}

func TestParseReminderTime(t *testing.T) {
	valid := map[string][2]int{
		"00:00": {0, 0},
		"09:30": {9, 30},
		"22:00": {22, 0},
		"23:59": {23, 59},
	}
	for in, want := range valid {
		hour, minute, err := ParseReminderTime(in)
		if err != nil {
			t.Errorf("ParseReminderTime(%q) unexpected error: %v", in, err)
			continue
		}
		if hour != want[0] || minute != want[1] {
			t.Errorf("ParseReminderTime(%q) = %d:%d, want %d:%d", in, hour, minute, want[0], want[1])
		}
	}

	invalid := []string{
		"", "9:00", "22:00:00", "10:00 PM", "24:00", "12:60", "1200", "ab:cd", " 9:00", "09.30",
	}
	for _, in := range invalid {
		if _, _, err := ParseReminderTime(in); err == nil {
			t.Errorf("ParseReminderTime(%q) accepted malformed input", in)
		}
	}
}

func TestDayDiff(t *testing.T) {
	a := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	if diff := DayDiff(a, b); diff != 3 {
		t.Errorf("DayDiff = %d, want 3", diff)
	}
	if diff := DayDiff(b, a); diff != -3 {
		t.Errorf("DayDiff reversed = %d, want -3", diff)
	}
	if diff := DayDiff(a, a); diff != 0 {
		t.Errorf("DayDiff same day = %d, want 0", diff)
	}
}

func TestDaysRemainingAt(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	if got := DaysRemainingAt(now, start, 10, time.UTC); got != 6 {
		t.Errorf("DaysRemainingAt mid-pledge = %d, want 6", got)
	}

	// Past the pledge end the count clamps at zero
	now = time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	if got := DaysRemainingAt(now, start, 10, time.UTC); got != 0 {
		t.Errorf("DaysRemainingAt past end = %d, want 0", got)
	}
}

func TestDeadline_PanicsOnUnvalidatedInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Deadline did not panic on malformed reminder time")
		}
	}()
	Deadline(time.UTC, "9:00 PM")
}
