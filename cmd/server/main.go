package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bill-management-backend/internal/config"
	"bill-management-backend/internal/logger"
	"bill-management-backend/internal/mailer"
	"bill-management-backend/internal/models"
	"bill-management-backend/internal/repository"
	"bill-management-backend/internal/routes"
	"bill-management-backend/internal/scheduler"
	"bill-management-backend/internal/services/notification"
	"bill-management-backend/internal/services/sweep"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zlog.Sync()

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Biller{},
		&models.CustomerBiller{},
		&models.Bill{},
		&models.Payment{},
		&models.PaymentAllocation{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	smtp := mailer.NewSMTPMailer(cfg.SMTP)

	// Background overdue sweep, decoupled from request handling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Sweep.Enabled {
		billRepo := repository.NewBillRepository(db)
		notificationRepo := repository.NewNotificationRepository(db)
		userRepo := repository.NewUserRepository(db)
		dispatcher := notification.NewDispatcher(notificationRepo, userRepo, smtp, zlog)
		sweeper := sweep.NewSweeper(billRepo, dispatcher, zlog)
		scheduler.NewSweepScheduler(sweeper, cfg.Sweep.Interval, zlog).Start(ctx)
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, cfg, smtp, zlog)

	if err := r.Run(":" + cfg.App.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
