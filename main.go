package main

import (
	"time"

	"github.com/dailygrind/dailygrind/config"
	"github.com/dailygrind/dailygrind/models"
	"github.com/dailygrind/dailygrind/reminder"
	"github.com/dailygrind/dailygrind/routes"
	"github.com/dailygrind/dailygrind/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Problem{}, &models.DayRecord{}, &models.FreezePurchase{})

	r := routes.SetupRouter(db)

	// Background reminder scan (best-effort)
	reminder.StartScheduler(db, reminder.LogNotifier{},
		time.Duration(cfg.ReminderScanSeconds)*time.Second,
		time.Duration(cfg.ReminderLeadMinutes)*time.Minute,
	)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
