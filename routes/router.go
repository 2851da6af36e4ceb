package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dailygrind/dailygrind/config"
	"github.com/dailygrind/dailygrind/controllers"
	"github.com/dailygrind/dailygrind/middleware"
	"github.com/dailygrind/dailygrind/store"
	"github.com/dailygrind/dailygrind/streak"
	"github.com/dailygrind/dailygrind/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	st := store.New(db)
	svc := streak.NewService(st, cfg.FreezeCostCoins)
	policy := streak.RewardPolicy{
		WeekBonus:   cfg.WeekBonusCoins,
		MonthBonus:  cfg.MonthBonusCoins,
		PledgeBonus: cfg.PledgeBonusCoins,
	}

	authController := controllers.NewAuthController(db)
	problemController := controllers.NewProblemController(db, svc, st, policy)
	streakController := controllers.NewStreakController(db, svc)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public stats endpoint
	api.GET("/stats", statsController.GetSiteStats)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/problems", problemController.CreateProblem)
	protected.GET("/problems", problemController.ListProblems)
	protected.GET("/problems/:id", problemController.GetProblem)
	protected.DELETE("/problems/:id", problemController.DeleteProblem)

	protected.GET("/streak/status", streakController.Status)
	protected.GET("/streak/calendar", streakController.Calendar)
	protected.POST("/streak/freeze", streakController.PurchaseFreeze)

	protected.GET("/stats/me", statsController.GetMyStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
