// Package streak implements the calendar/streak reconciliation core: timezone
// day arithmetic, full-history streak recalculation, the mutation triggers
// that drive it, and the milestone reward policy. It talks to persistence only
// through the Store interface so it can run against a fake in tests.
package streak

import (
	"fmt"
	"time"
)

// Two distinct notions of "the user's day" exist and must never be conflated:
//
//   - Today / TodayAt return a calendar-date token: the user-local date
//     re-anchored to UTC midnight. This is what gets persisted in DATE columns
//     and compared with DayDiff.
//   - RealStartOfDay / RealStartOfDayAt return an absolute instant: the moment
//     the user's current local day actually began. This is what deadline
//     arithmetic is built on.

// TodayAt returns the calendar date observed in loc at instant now, normalized
// to UTC midnight of that date.
func TodayAt(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the user's current calendar date. DST-correct: it goes through
// the real IANA zone rules, not a fixed offset.
func Today(loc *time.Location) time.Time {
	return TodayAt(time.Now(), loc)
}

// RealStartOfDayAt returns the absolute instant at which the calendar day
// containing now (as observed in loc) began.
func RealStartOfDayAt(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// RealStartOfDay returns the absolute instant of the user's current local midnight.
func RealStartOfDay(loc *time.Location) time.Time {
	return RealStartOfDayAt(time.Now(), loc)
}

// DeadlineAt returns the instant by which the user must log activity today:
// local midnight plus the reminder offset.
func DeadlineAt(now time.Time, loc *time.Location, hour, minute int) time.Time {
	return RealStartOfDayAt(now, loc).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// Deadline computes today's deadline for an already-validated "HH:MM" reminder time.
func Deadline(loc *time.Location, reminder string) time.Time {
	hour, minute, err := ParseReminderTime(reminder)
	if err != nil {
		panic(fmt.Sprintf("streak: unvalidated reminder time %q: %v", reminder, err))
	}
	return DeadlineAt(time.Now(), loc, hour, minute)
}

// DayDiff returns the whole-day difference a-b between two normalized calendar
// dates. Both arguments must be UTC-midnight tokens from TodayAt.
func DayDiff(a, b time.Time) int {
	return int(a.Sub(b) / (24 * time.Hour))
}

// DaysRemainingAt returns how many whole calendar days are left of a pledge
// that started on startDate and runs pledgeDays, never negative.
func DaysRemainingAt(now time.Time, startDate time.Time, pledgeDays int, loc *time.Location) int {
	end := startDate.AddDate(0, 0, pledgeDays)
	left := DayDiff(end, TodayAt(now, loc))
	if left < 0 {
		return 0
	}
	return left
}

// DaysRemaining is DaysRemainingAt evaluated now.
func DaysRemaining(startDate time.Time, pledgeDays int, loc *time.Location) int {
	return DaysRemainingAt(time.Now(), startDate, pledgeDays, loc)
}

// ParseReminderTime parses a strict 24-hour "HH:MM" wall-clock time. Seconds,
// AM/PM suffixes and single-digit fields are rejected; an earlier loosely
// parsed format let "9:00 PM" through and silently produced wrong deadlines.
func ParseReminderTime(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("reminder time must be HH:MM, got %q", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, fmt.Errorf("reminder time must be HH:MM, got %q", s)
		}
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("reminder time out of range: %q", s)
	}
	return hour, minute, nil
}
