package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"gigwork_backend/database"
	"gigwork_backend/internal/config"
	"gigwork_backend/internal/dispatch"
	"gigwork_backend/internal/handlers"
	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/middleware"
	"gigwork_backend/internal/payments"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/routes"
	"gigwork_backend/internal/services"
	"gigwork_backend/internal/validator"
	"gigwork_backend/internal/workers"
	"gigwork_backend/ws"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}
	logger.Info("Migrations applied")

	ginRouter := SetupRouter(cfg, sqlDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, sqlDB *sql.DB) *gin.Engine {
	gigRepo := repositories.NewGigRepository(sqlDB)
	interestRepo := repositories.NewInterestRepository(sqlDB)
	notificationRepo := repositories.NewNotificationRepository(sqlDB)
	profileRepo := repositories.NewProfileRepository(sqlDB)

	dispatcher := dispatch.NewDispatcher(notificationRepo)

	var paymentProvider payments.Provider
	if cfg.Payments.ConsumerKey != "" {
		paymentProvider = payments.NewPesapalClient(cfg.Payments)
	} else {
		logger.Warn("Payment gateway credentials missing, using mock provider")
		paymentProvider = &payments.MockProvider{}
	}

	serviceContainer := initializeServices(gigRepo, interestRepo, notificationRepo, profileRepo, dispatcher, paymentProvider)
	appHandlers := initializeHandlers(serviceContainer)

	wsManager := ws.NewManager(dispatcher)
	go wsManager.Run()
	wsHandler := ws.NewHandler(wsManager)

	worker := workers.NewGigWorker(gigRepo, notificationRepo, cfg.Notifications.RetentionDays)
	worker.Start(context.Background())

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	return ginRouter
}

func initializeServices(
	gigRepo repositories.GigRepository,
	interestRepo repositories.InterestRepository,
	notificationRepo repositories.NotificationRepository,
	profileRepo repositories.ProfileDirectory,
	dispatcher *dispatch.Dispatcher,
	paymentProvider payments.Provider,
) *services.ServiceContainer {
	return &services.ServiceContainer{
		GigService:          services.NewGigService(gigRepo, interestRepo, profileRepo, dispatcher, paymentProvider),
		NotificationService: services.NewNotificationService(notificationRepo, dispatcher),
	}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		GigHandler:          handlers.NewGigHandler(baseHandler, container.GigService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, container.NotificationService),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}
