package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dailygrind/dailygrind/config"
	"github.com/dailygrind/dailygrind/middleware"
	"github.com/dailygrind/dailygrind/models"
	"github.com/dailygrind/dailygrind/streak"
	"github.com/dailygrind/dailygrind/utils"
)

// AuthController handles registration, login and profile endpoints.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new controller instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a new account. Timezone and reminder time are validated
// here at the boundary; everything past this point assumes them well-formed.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username     string `json:"username" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required"`
		Timezone     string `json:"timezone"`
		ReminderTime string `json:"reminder_time"`
		PledgeDays   int    `json:"pledge_days"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	if !validUsername(username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 3-64 characters of letters, digits, _ or -")
		return
	}
	if len(req.Password) < 8 {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password must be at least 8 characters")
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "unknown timezone identifier")
		return
	}

	if req.ReminderTime != "" {
		if _, _, err := streak.ParseReminderTime(req.ReminderTime); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40005, "reminder time must be 24-hour HH:MM")
			return
		}
	}

	cfg := config.Get()
	pledgeDays := req.PledgeDays
	if pledgeDays <= 0 {
		pledgeDays = cfg.DefaultPledgeDays
	}
	if pledgeDays > 365 {
		utils.Error(ctx, http.StatusBadRequest, 40006, "pledge length cannot exceed 365 days")
		return
	}

	var count int64
	if err := a.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err == nil && count > 0 {
		utils.Error(ctx, http.StatusConflict, 40901, "username already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Username:         username,
		Email:            strings.TrimSpace(req.Email),
		PasswordHash:     hash,
		Timezone:         timezone,
		ReminderTime:     req.ReminderTime,
		PledgeStartDate:  streak.Today(loc),
		PledgeLengthDays: pledgeDays,
	}

	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// Logout revokes the current token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	tokenID := ctx.GetString(middleware.ContextTokenIDKey)
	if tokenID == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	exp := time.Now().Add(72 * time.Hour)
	if v, ok := ctx.Get(middleware.ContextTokenExpKey); ok {
		if t, ok := v.(time.Time); ok {
			exp = t
		}
	}
	utils.BlacklistToken(tokenID, exp)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	utils.Success(ctx, gin.H{"user": userResponse(user)})
}

// UpdateProfile changes timezone, reminder time and pledge length. The same
// boundary validation as Register applies.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Timezone     *string `json:"timezone"`
		ReminderTime *string `json:"reminder_time"`
		PledgeDays   *int    `json:"pledge_days"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40004, "unknown timezone identifier")
			return
		}
		updates["timezone"] = *req.Timezone
	}
	if req.ReminderTime != nil {
		if *req.ReminderTime != "" {
			if _, _, err := streak.ParseReminderTime(*req.ReminderTime); err != nil {
				utils.Error(ctx, http.StatusBadRequest, 40005, "reminder time must be 24-hour HH:MM")
				return
			}
		}
		updates["reminder_time"] = *req.ReminderTime
	}
	if req.PledgeDays != nil {
		if *req.PledgeDays < 1 || *req.PledgeDays > 365 {
			utils.Error(ctx, http.StatusBadRequest, 40006, "pledge length must be 1-365 days")
			return
		}
		updates["pledge_length_days"] = *req.PledgeDays
	}

	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40008, "nothing to update")
		return
	}

	if err := a.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to update profile")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": userResponse(user)})
}

func validUsername(s string) bool {
	if len(s) < 3 || len(s) > 64 {
		return false
	}
	for _, r := range s {
		ok := r == '_' || r == '-' ||
			(r >= '0' && r <= '9') ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z')
		if !ok {
			return false
		}
	}
	return true
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":                 user.ID,
		"username":           user.Username,
		"email":              user.Email,
		"timezone":           user.Timezone,
		"reminder_time":      user.ReminderTime,
		"coins":              user.Coins,
		"pledge_start_date":  user.PledgeStartDate.Format("2006-01-02"),
		"pledge_length_days": user.PledgeLengthDays,
		"current_streak":     user.CurrentStreak,
		"max_streak":         user.MaxStreak,
		"days_completed":     user.DaysCompleted,
		"created_at":         user.CreatedAt,
	}
}
