package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bill-management-backend/internal/config"
	handler "bill-management-backend/internal/handlers"
	"bill-management-backend/internal/mailer"
	"bill-management-backend/internal/middleware"
	"bill-management-backend/internal/models"
	"bill-management-backend/internal/repository"
	"bill-management-backend/internal/services/allocation"
	"bill-management-backend/internal/services/notification"
	"bill-management-backend/internal/services/reports"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, m mailer.Mailer, log *zap.Logger) {
	billRepo := repository.NewBillRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	dispatcher := notification.NewDispatcher(notificationRepo, userRepo, m, log)
	engine := allocation.NewEngine(billRepo, dispatcher, log)
	reportService := reports.NewService(db)

	authHandler := handler.NewAuthHandler(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	billHandler := handler.NewBillHandler(billRepo, userRepo, auditRepo)
	paymentHandler := handler.NewPaymentHandler(engine, paymentRepo, userRepo, auditRepo)
	billerHandler := handler.NewBillerHandler(db, userRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, userRepo)
	reportHandler := handler.NewReportHandler(reportService, userRepo)
	auditHandler := handler.NewAuditLogHandler(auditRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(cfg.JWT.Secret))

	bills := authed.Group("/bills")
	{
		bills.GET("", billHandler.List)
		bills.GET("/:id", billHandler.Get)
		bills.POST("", middleware.RequireRole(models.RoleBiller), billHandler.Create)
		bills.PUT("/:id", middleware.RequireRole(models.RoleBiller), billHandler.Update)
	}

	payments := authed.Group("/payments")
	{
		payments.POST("", middleware.RequireRole(models.RoleCustomer), paymentHandler.Create)
		payments.GET("", paymentHandler.List)
		payments.GET("/:id", paymentHandler.Get)
	}

	billers := authed.Group("/billers")
	{
		billers.GET("", billerHandler.List)
		billers.GET("/:id", billerHandler.Get)
		billers.POST("", middleware.RequireRole(models.RoleBiller), billerHandler.Create)
		billers.PUT("/:id", middleware.RequireRole(models.RoleBiller), billerHandler.Update)
	}

	links := authed.Group("/customer-billers")
	{
		links.GET("", billerHandler.ListLinks)
		links.GET("/:id", billerHandler.GetLink)
		links.POST("", middleware.RequireRole(models.RoleCustomer), billerHandler.CreateLink)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/:id", notificationHandler.Get)
	}

	customerReports := authed.Group("/reports/customer", middleware.RequireRole(models.RoleCustomer))
	{
		customerReports.GET("/total-spending", reportHandler.TotalSpending)
		customerReports.GET("/spending-by-biller", reportHandler.SpendingByBiller)
		customerReports.GET("/monthly-spending", reportHandler.MonthlySpending)
		customerReports.GET("/outstanding", reportHandler.Outstanding)
	}

	billerReports := authed.Group("/reports/biller", middleware.RequireRole(models.RoleBiller))
	{
		billerReports.GET("/total-revenue", reportHandler.TotalRevenue)
		billerReports.GET("/revenue-by-customer", reportHandler.RevenueByCustomer)
		billerReports.GET("/monthly-revenue", reportHandler.MonthlyRevenue)
		billerReports.GET("/outstanding", reportHandler.OutstandingBills)
		billerReports.GET("/customer-stats", reportHandler.CustomerStatistics)
		billerReports.GET("/payment-methods", reportHandler.PaymentMethodBreakdown)
	}

	authed.GET("/audit-logs", middleware.RequireRole(models.RoleSuperuser), auditHandler.List)
}
