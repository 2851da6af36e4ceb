package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dailygrind/dailygrind/models"
	"github.com/dailygrind/dailygrind/streak"
	"github.com/dailygrind/dailygrind/utils"
)

// StreakController exposes streak status, the calendar view and freeze purchases.
type StreakController struct {
	db  *gorm.DB
	svc *streak.Service
}

// NewStreakController creates a new controller instance.
func NewStreakController(db *gorm.DB, svc *streak.Service) *StreakController {
	return &StreakController{db: db, svc: svc}
}

// Status returns the cached aggregates plus today's deadline and pledge progress.
func (s *StreakController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	loc := userLocation(user.Timezone)
	now := time.Now()
	today := streak.TodayAt(now, loc)

	var todayRec *models.DayRecord
	var rec models.DayRecord
	err := s.db.Where("user_id = ? AND date = ?", userID, today).First(&rec).Error
	if err == nil {
		todayRec = &rec
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load streak status")
		return
	}

	resp := gin.H{
		"current_streak":  user.CurrentStreak,
		"max_streak":      user.MaxStreak,
		"days_completed":  user.DaysCompleted,
		"coins":           user.Coins,
		"freeze_cost":     s.svc.FreezeCost(),
		"today":           today.Format("2006-01-02"),
		"today_completed": todayRec != nil && todayRec.Completed,
		"today_frozen":    todayRec != nil && todayRec.Frozen,
		"days_remaining":  streak.DaysRemainingAt(now, user.PledgeStartDate, user.PledgeLengthDays, loc),
	}

	if user.ReminderTime != "" {
		if hour, minute, err := streak.ParseReminderTime(user.ReminderTime); err == nil {
			deadline := streak.DeadlineAt(now, loc, hour, minute)
			resp["deadline"] = deadline.UTC()
			resp["deadline_passed"] = now.After(deadline) && (todayRec == nil || !todayRec.Protected())
		}
	}

	utils.Success(ctx, resp)
}

// Calendar returns the day records of one month (defaults to the current
// month in the user's timezone), oldest first, for rendering a heatmap.
func (s *StreakController) Calendar(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	loc := userLocation(user.Timezone)
	today := streak.Today(loc)

	year, month := today.Year(), int(today.Month())
	if v := ctx.Query("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 2000 && n <= 2100 {
			year = n
		}
	}
	if v := ctx.Query("month"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 12 {
			month = n
		}
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	var records []models.DayRecord
	if err := s.db.Where("user_id = ? AND date >= ? AND date < ?", userID, first, next).
		Order("date ASC").
		Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load calendar")
		return
	}

	days := make([]gin.H, 0, len(records))
	for _, r := range records {
		days = append(days, gin.H{
			"date":      r.Date.Format("2006-01-02"),
			"completed": r.Completed,
			"frozen":    r.Frozen,
		})
	}

	utils.Success(ctx, gin.H{
		"year":  year,
		"month": month,
		"days":  days,
	})
}

// PurchaseFreeze buys a streak freeze for a date (default today). Failures
// carry distinct codes so the client can show specific guidance.
func (s *StreakController) PurchaseFreeze(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	// Empty body means "freeze today"
	_ = ctx.ShouldBindJSON(&req)

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	loc := userLocation(user.Timezone)
	today := streak.Today(loc)

	date := today
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40030, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	agg, err := s.svc.OnFreezePurchased(ctx.Request.Context(), userID, date, today)
	if err != nil {
		switch {
		case errors.Is(err, streak.ErrInsufficientBalance):
			utils.Error(ctx, http.StatusBadRequest, 40031, "not enough coins for a freeze")
		case errors.Is(err, streak.ErrDayAlreadyCompleted):
			utils.Error(ctx, http.StatusBadRequest, 40032, "you already completed a problem that day")
		case errors.Is(err, streak.ErrDayAlreadyFrozen):
			utils.Error(ctx, http.StatusBadRequest, 40033, "that day is already frozen")
		case errors.Is(err, streak.ErrFreezeDateInFuture):
			utils.Error(ctx, http.StatusBadRequest, 40034, "cannot freeze a future date")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to purchase freeze")
		}
		return
	}

	utils.InvalidateByPrefix("cache:user:" + strconv.Itoa(int(userID)) + ":")

	utils.Success(ctx, gin.H{
		"frozen_date": date.Format("2006-01-02"),
		"coins_spent": s.svc.FreezeCost(),
		"streak":      agg,
	})
}
