package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dailygrind/dailygrind/models"
	"github.com/dailygrind/dailygrind/streak"
	"github.com/dailygrind/dailygrind/utils"
)

// ProblemController manages the problem log. Creating and deleting entries are
// the mutations that drive streak recalculation.
type ProblemController struct {
	db     *gorm.DB
	svc    *streak.Service
	wallet streak.Store
	policy streak.RewardPolicy
}

// NewProblemController creates a new controller instance.
func NewProblemController(db *gorm.DB, svc *streak.Service, wallet streak.Store, policy streak.RewardPolicy) *ProblemController {
	return &ProblemController{db: db, svc: svc, wallet: wallet, policy: policy}
}

// CreateProblem logs a solved problem for today (in the user's timezone),
// marks the day completed and reports any milestone reached.
func (p *ProblemController) CreateProblem(ctx *gin.Context) {
	var req struct {
		Title      string `json:"title" binding:"required,min=1"`
		URL        string `json:"url"`
		Difficulty string `json:"difficulty" binding:"required"`
		Topic      string `json:"topic"`
		Notes      string `json:"notes"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}
	if !models.ValidDifficulty(req.Difficulty) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "difficulty must be easy, medium or hard")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := p.db.First(&user, userID).Error; err != nil {
		// Never fabricate streak state for a missing user
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	loc := userLocation(user.Timezone)
	today := streak.Today(loc)

	problem := models.Problem{
		UserID:     userID,
		Title:      title,
		URL:        strings.TrimSpace(req.URL),
		Difficulty: req.Difficulty,
		Topic:      models.NormalizeTopic(req.Topic),
		Notes:      utils.Sanitize(req.Notes),
		Date:       today,
	}

	if err := p.db.Create(&problem).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to log problem")
		return
	}

	agg, err := p.svc.OnActivityLogged(ctx.Request.Context(), userID, today)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to update streak")
		return
	}

	milestone := p.awardMilestone(ctx, user, agg)

	p.invalidateUserCaches(userID)

	utils.Success(ctx, gin.H{
		"problem":   problem,
		"streak":    agg,
		"milestone": milestone,
	})
}

// awardMilestone evaluates the reward policy when the current streak grew and
// credits any coins. The policy itself is pure; crediting happens here.
func (p *ProblemController) awardMilestone(ctx *gin.Context, user models.User, agg streak.Aggregates) *streak.Milestone {
	if agg.CurrentStreak <= user.CurrentStreak {
		return nil
	}

	pledgeComplete := !user.PledgeRewarded && agg.DaysCompleted >= user.PledgeLengthDays
	m := p.policy.Evaluate(agg.CurrentStreak, pledgeComplete)
	if m.Tag == streak.TagNone && m.Reward == 0 {
		return nil
	}

	if m.Reward > 0 {
		if err := p.wallet.Credit(ctx.Request.Context(), user.ID, m.Reward); err != nil {
			utils.Sugar.Errorf("failed to credit milestone reward user=%d coins=%d: %v", user.ID, m.Reward, err)
			return &m
		}
	}
	if pledgeComplete {
		if err := p.db.Model(&models.User{}).Where("id = ?", user.ID).Update("pledge_rewarded", true).Error; err != nil {
			utils.Sugar.Errorf("failed to flag pledge reward user=%d: %v", user.ID, err)
		}
	}
	return &m
}

// ListProblems returns the user's log, newest first, optionally bounded by
// from/to dates (YYYY-MM-DD).
func (p *ProblemController) ListProblems(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	from := strings.TrimSpace(ctx.Query("from"))
	to := strings.TrimSpace(ctx.Query("to"))

	// Cache unfiltered pages only, to avoid cache key explosion
	var cacheKey string
	if from == "" && to == "" {
		cacheKey = fmt.Sprintf("cache:user:%d:problems:page=%d:size=%d", userID, page, pageSize)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	query := p.db.Where("user_id = ?", userID).Order("created_at DESC")
	if from != "" {
		query = query.Where("date >= ?", from)
	}
	if to != "" {
		query = query.Where("date <= ?", to)
	}

	var total int64
	if err := query.Model(&models.Problem{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list problems")
		return
	}

	var problems []models.Problem
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&problems).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list problems")
		return
	}

	resp := utils.JSONResponse{
		Code:    0,
		Message: "success",
		Data: gin.H{
			"problems":  problems,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	}
	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, resp, 0)
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetProblem returns one log entry owned by the caller.
func (p *ProblemController) GetProblem(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid problem id")
		return
	}

	var problem models.Problem
	if err := p.db.Where("id = ? AND user_id = ?", id, userID).First(&problem).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "problem not found")
		return
	}

	utils.Success(ctx, gin.H{"problem": problem})
}

// DeleteProblem removes a log entry. Deleting the last entry of a day unmarks
// that day and the streak is recalculated to match.
func (p *ProblemController) DeleteProblem(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid problem id")
		return
	}

	var problem models.Problem
	if err := p.db.Where("id = ? AND user_id = ?", id, userID).First(&problem).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "problem not found")
		return
	}

	var user models.User
	if err := p.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	if err := p.db.Delete(&models.Problem{}, problem.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to delete problem")
		return
	}

	var remaining int64
	if err := p.db.Model(&models.Problem{}).
		Where("user_id = ? AND date = ?", userID, problem.Date).
		Count(&remaining).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to delete problem")
		return
	}

	loc := userLocation(user.Timezone)
	agg, recalced, err := p.svc.OnLastActivityRemoved(ctx.Request.Context(), userID, problem.Date, int(remaining), streak.Today(loc))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to update streak")
		return
	}

	p.invalidateUserCaches(userID)

	resp := gin.H{"deleted": true, "remaining_today": remaining}
	if recalced {
		resp["streak"] = agg
	}
	utils.Success(ctx, resp)
}

func (p *ProblemController) invalidateUserCaches(userID uint) {
	prefix := "cache:user:" + strconv.Itoa(int(userID)) + ":"
	utils.InvalidateByPrefix(prefix)
}
