package app

import (
	"context"
	"fmt"
	"time"

	"filemanager/database"
	"filemanager/internal/auth"
	"filemanager/internal/config"
	"filemanager/internal/handlers"
	"filemanager/internal/logger"
	"filemanager/internal/middleware"
	"filemanager/internal/routes"
	"filemanager/internal/services"
	"filemanager/internal/storage"
	"filemanager/internal/validator"
	"filemanager/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg.Database.DSN, database.Options{Silent: cfg.Server.Env == "production"})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	disks, err := NewDisks(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container := initializeServices(cfg, disks)
	workers.NewURLRefreshWorker(gormDB, container.BackfillService, cfg.Files.URLRefreshInterval(), cfg.Files.BackfillBatchSize).Start(ctx)

	ginRouter := setupRouter(cfg, gormDB, container)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// NewDisks собирает публичный и приватный диски из конфигурации
func NewDisks(cfg *config.Config) (*storage.Disks, error) {
	return storage.NewDisks(storage.DisksConfig{
		Type:           cfg.Storage.Type,
		Region:         cfg.Storage.Region,
		Endpoint:       cfg.Storage.Endpoint,
		PublicEndpoint: cfg.Storage.PublicEndpoint,
		AccessKey:      cfg.Storage.AccessKey,
		SecretKey:      cfg.Storage.SecretKey,
		PublicBucket:   cfg.Storage.PublicBucket,
		PrivateBucket:  cfg.Storage.PrivateBucket,
		BasePath:       cfg.Storage.BasePath,
		BaseURL:        cfg.Storage.BaseURL,
	})
}

// SetupRouter собирает сервисы и роутер поверх готовых БД и дисков
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, disks *storage.Disks) *gin.Engine {
	return setupRouter(cfg, gormDB, initializeServices(cfg, disks))
}

func setupRouter(cfg *config.Config, gormDB *gorm.DB, serviceContainer *services.ServiceContainer) *gin.Engine {
	// 1. Хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer)

	// 2. Gin
	ginRouter := initializeGinRouter(cfg, gormDB)

	// 3. Маршруты
	tokens := auth.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)
	routes.RegisterRoutes(ginRouter, appHandlers, middleware.AuthMiddleware(tokens))

	return ginRouter
}

func initializeServices(cfg *config.Config, disks *storage.Disks) *services.ServiceContainer {
	return services.NewServiceContainer(cfg.Files, disks, services.SystemClock)
}

func initializeHandlers(cfg *config.Config, services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		FolderHandler: handlers.NewFolderHandler(baseHandler, services.FolderService, services.TagService),
		FileHandler:   handlers.NewFileHandler(baseHandler, services.FileService, services.TagService, cfg.Files.MaxUploadSize),
		TaskHandler:   handlers.NewTaskHandler(baseHandler, services.TagService),
		HealthHandler: handlers.NewHealthHandler(baseHandler),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	// multipart сверх этого объема уходит во временные файлы
	router.MaxMultipartMemory = 32 << 20
	return router
}
