// Package reminder runs the periodic scan that nudges users whose daily
// deadline is approaching. It consumes only the streak package's pure time
// functions; delivery goes through a Notifier so the transport can change
// without touching the scan.
package reminder

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/dailygrind/dailygrind/models"
	"github.com/dailygrind/dailygrind/streak"
	"github.com/dailygrind/dailygrind/utils"
)

// Notifier delivers one reminder to a user.
type Notifier interface {
	Remind(user models.User, deadline time.Time)
}

// LogNotifier writes reminders to the application log. Stand-in for an
// email/push integration; the scheduler does not care which.
type LogNotifier struct{}

// Remind logs the reminder.
func (LogNotifier) Remind(user models.User, deadline time.Time) {
	utils.Sugar.Infow("streak reminder due",
		"user_id", user.ID,
		"username", user.Username,
		"deadline", deadline.UTC(),
		"current_streak", user.CurrentStreak,
	)
}

// StartScheduler launches a background goroutine that scans users every
// interval and reminds those inside the lead window before their deadline who
// have not protected today yet. Best-effort: failures are logged and the next
// tick retries. Sends are deduplicated per (user, local date) via redis.
func StartScheduler(db *gorm.DB, notifier Notifier, interval, lead time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			scanOnce(db, notifier, lead, time.Now())
		}
	}()
}

func scanOnce(db *gorm.DB, notifier Notifier, lead time.Duration, now time.Time) {
	var users []models.User
	if err := db.Where("reminder_time <> ''").Find(&users).Error; err != nil {
		utils.Sugar.Errorf("reminder scan query failed: %v", err)
		return
	}

	for _, user := range users {
		loc, err := time.LoadLocation(user.Timezone)
		if err != nil {
			utils.Sugar.Warnf("reminder: user %d has unloadable timezone %q", user.ID, user.Timezone)
			continue
		}
		hour, minute, err := streak.ParseReminderTime(user.ReminderTime)
		if err != nil {
			// Should have been rejected at the boundary; skip rather than crash the loop
			utils.Sugar.Warnf("reminder: user %d has malformed reminder time %q", user.ID, user.ReminderTime)
			continue
		}

		deadline := streak.DeadlineAt(now, loc, hour, minute)
		if now.Before(deadline.Add(-lead)) || now.After(deadline) {
			continue
		}

		today := streak.TodayAt(now, loc)
		var rec models.DayRecord
		if err := db.Where("user_id = ? AND date = ?", user.ID, today).First(&rec).Error; err == nil && rec.Protected() {
			continue
		}

		dedupeKey := "reminder:" + today.Format("2006-01-02") + ":" + strconv.Itoa(int(user.ID))
		if !utils.SetNX(dedupeKey, 24*time.Hour) {
			continue
		}

		notifier.Remind(user, deadline)
	}
}
