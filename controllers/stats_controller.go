package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dailygrind/dailygrind/models"
	"github.com/dailygrind/dailygrind/utils"
)

// StatsController provides aggregate statistics for the site and per user.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetSiteStats returns public platform-wide counters.
func (s *StatsController) GetSiteStats(ctx *gin.Context) {
	var userCount int64
	var problemCount int64
	var freezeCount int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fall back to 0 instead of failing the whole endpoint
		userCount = 0
	}
	if err := s.db.Model(&models.Problem{}).Count(&problemCount).Error; err != nil {
		problemCount = 0
	}
	if err := s.db.Model(&models.FreezePurchase{}).Count(&freezeCount).Error; err != nil {
		freezeCount = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":    userCount,
		"problem_count": problemCount,
		"freeze_count":  freezeCount,
	})
}

type bucketCount struct {
	Bucket string `gorm:"column:bucket" json:"bucket"`
	Count  int64  `gorm:"column:cnt" json:"count"`
}

// GetMyStats returns the caller's totals grouped by difficulty and topic.
func (s *StatsController) GetMyStats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var byDifficulty []bucketCount
	if err := s.db.Model(&models.Problem{}).
		Select("difficulty AS bucket, COUNT(*) AS cnt").
		Where("user_id = ?", userID).
		Group("difficulty").
		Scan(&byDifficulty).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load stats")
		return
	}

	var byTopic []bucketCount
	if err := s.db.Model(&models.Problem{}).
		Select("topic AS bucket, COUNT(*) AS cnt").
		Where("user_id = ?", userID).
		Group("topic").
		Scan(&byTopic).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load stats")
		return
	}

	var totalProblems int64
	if err := s.db.Model(&models.Problem{}).Where("user_id = ?", userID).Count(&totalProblems).Error; err != nil {
		totalProblems = 0
	}

	var freezesBought int64
	if err := s.db.Model(&models.FreezePurchase{}).Where("user_id = ?", userID).Count(&freezesBought).Error; err != nil {
		freezesBought = 0
	}

	utils.Success(ctx, gin.H{
		"total_problems": totalProblems,
		"by_difficulty":  byDifficulty,
		"by_topic":       byTopic,
		"freezes_bought": freezesBought,
	})
}
