package routes

import (
	"filemanager/internal/handlers"
	"filemanager/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// Health открыт, остальное API - за authMiddleware.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	authMiddleware gin.HandlerFunc,
) {
	api := ginRouter.Group("/api/v1")

	appHandlers.HealthHandler.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		appHandlers.FolderHandler.RegisterRoutes(protected)
		appHandlers.FileHandler.RegisterRoutes(protected)
		appHandlers.TaskHandler.RegisterRoutes(protected)
	}

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
